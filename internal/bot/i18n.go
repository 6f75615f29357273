package bot

import "strings"

const (
	langEN = "en"
	langFR = "fr"
)

var catalog = map[string]map[string]string{
	langEN: {
		"footer_brand":          "Luna Guard",
		"notice_title":          "Automod",
		"notice_desc":           "<@%s>, your message was removed.",
		"log_title":             "Automod action",
		"audit_title":           "Automod audit",
		"field_user":            "User",
		"field_type":            "Violation",
		"field_reason":          "Reason",
		"field_action":          "Action",
		"field_count":           "Violations (24h)",
		"field_case":            "Case",
		"field_event":           "Event",
		"field_level":           "Level",
		"field_details":         "Details",
		"field_channel":         "Channel",
		"field_features":        "Features",
		"field_thresholds":      "Thresholds",
		"field_words":           "Filtered words",
		"field_language":        "Language",
		"field_total":           "Total",
		"field_users":           "Users",
		"field_by_type":         "By violation",
		"field_by_action":       "By action",
		"field_top":             "Top offender",
		"field_last":            "Last violation",
		"field_history":         "Recent cases",
		"action_warn":           "Warning",
		"action_timeout":        "Timeout (%s)",
		"action_mute":           "Muted",
		"action_kick":           "Kicked",
		"type_mention_spam":     "Mention spam",
		"type_word_filter":      "Filtered word",
		"type_spam_detection":   "Message spam",
		"type_caps_filter":      "Excessive caps",
		"type_invite_filter":    "Server invite",
		"type_image_spam":       "Image spam",
		"type_emoji_spam":       "Emoji spam",
		"type_newline_spam":     "Line break spam",
		"type_char_spam":        "Character spam",
		"type_repeated_text":    "Repeated text",
		"type_scam_detection":   "Scam link",
		"event_action_failed":   "Action failed",
		"event_config_change":   "Configuration changed",
		"event_reset":           "Violations reset",
		"value_on":              "on",
		"value_off":             "off",
		"value_none":            "none",
		"value_not_set":         "not set",
		"value_system":          "system",
		"status_title":          "Automod status",
		"feature_title":         "Automod feature",
		"feature_enabled":       "`%s` is now enabled.",
		"feature_disabled":      "`%s` is now disabled.",
		"threshold_title":       "Automod threshold",
		"threshold_updated":     "`%s` set to %s.",
		"filter_title":          "Word filter",
		"filter_added":          "Word added to the filter.",
		"filter_exists":         "That word is already filtered.",
		"filter_removed":        "Word removed from the filter.",
		"filter_missing":        "That word is not in the filter.",
		"filter_empty":          "No filtered words.",
		"logchannel_title":      "Log channel",
		"logchannel_updated":    "Automod actions will be logged in <#%s>.",
		"logchannel_cleared":    "Log channel cleared.",
		"violations_title":      "Violations",
		"violations_none":       "No violation in the last 24 hours.",
		"reset_title":           "Violations reset",
		"reset_done":            "Violation count reset for <@%s>.",
		"report_title":          "Automod report",
		"report_desc":           "Since %s",
		"language_title":        "Language",
		"language_updated":      "Language set to English.",
		"error_title":           "Error",
		"error_only_guild":      "This command only works in a server.",
		"error_forbidden":       "You need the Manage Server permission.",
		"error_failed":          "Something went wrong, please try again.",
		"error_unknown":         "Unknown subcommand.",
		"error_unknown_feature": "Unknown feature. Valid features: %s",
		"error_unknown_name":    "Unknown threshold. Valid thresholds: %s",
		"error_out_of_range":    "`%s` must be between %g and %g.",
		"error_missing_user":    "Please pick a user.",
	},
	langFR: {
		"footer_brand":          "Luna Guard",
		"notice_title":          "Automod",
		"notice_desc":           "<@%s>, ton message a ete supprime.",
		"log_title":             "Action automod",
		"audit_title":           "Audit automod",
		"field_user":            "Utilisateur",
		"field_type":            "Infraction",
		"field_reason":          "Raison",
		"field_action":          "Sanction",
		"field_count":           "Infractions (24h)",
		"field_case":            "Dossier",
		"field_event":           "Evenement",
		"field_level":           "Niveau",
		"field_details":         "Details",
		"field_channel":         "Salon",
		"field_features":        "Modules",
		"field_thresholds":      "Seuils",
		"field_words":           "Mots filtres",
		"field_language":        "Langue",
		"field_total":           "Total",
		"field_users":           "Utilisateurs",
		"field_by_type":         "Par infraction",
		"field_by_action":       "Par sanction",
		"field_top":             "Recidiviste principal",
		"field_last":            "Derniere infraction",
		"field_history":         "Derniers dossiers",
		"action_warn":           "Avertissement",
		"action_timeout":        "Exclusion temporaire (%s)",
		"action_mute":           "Rendu muet",
		"action_kick":           "Expulse",
		"type_mention_spam":     "Spam de mentions",
		"type_word_filter":      "Mot interdit",
		"type_spam_detection":   "Spam de messages",
		"type_caps_filter":      "Majuscules excessives",
		"type_invite_filter":    "Invitation de serveur",
		"type_image_spam":       "Spam d'images",
		"type_emoji_spam":       "Spam d'emojis",
		"type_newline_spam":     "Spam de retours a la ligne",
		"type_char_spam":        "Spam de caracteres",
		"type_repeated_text":    "Texte repete",
		"type_scam_detection":   "Lien d'arnaque",
		"event_action_failed":   "Sanction echouee",
		"event_config_change":   "Configuration modifiee",
		"event_reset":           "Infractions remises a zero",
		"value_on":              "actif",
		"value_off":             "inactif",
		"value_none":            "aucun",
		"value_not_set":         "non defini",
		"value_system":          "systeme",
		"status_title":          "Statut automod",
		"feature_title":         "Module automod",
		"feature_enabled":       "`%s` est maintenant actif.",
		"feature_disabled":      "`%s` est maintenant inactif.",
		"threshold_title":       "Seuil automod",
		"threshold_updated":     "`%s` regle sur %s.",
		"filter_title":          "Filtre de mots",
		"filter_added":          "Mot ajoute au filtre.",
		"filter_exists":         "Ce mot est deja filtre.",
		"filter_removed":        "Mot retire du filtre.",
		"filter_missing":        "Ce mot n'est pas dans le filtre.",
		"filter_empty":          "Aucun mot filtre.",
		"logchannel_title":      "Salon de logs",
		"logchannel_updated":    "Les actions automod seront journalisees dans <#%s>.",
		"logchannel_cleared":    "Salon de logs retire.",
		"violations_title":      "Infractions",
		"violations_none":       "Aucune infraction ces dernieres 24 heures.",
		"reset_title":           "Infractions remises a zero",
		"reset_done":            "Compteur d'infractions remis a zero pour <@%s>.",
		"report_title":          "Rapport automod",
		"report_desc":           "Depuis le %s",
		"language_title":        "Langue",
		"language_updated":      "Langue reglee sur le francais.",
		"error_title":           "Erreur",
		"error_only_guild":      "Cette commande fonctionne uniquement sur un serveur.",
		"error_forbidden":       "Il faut la permission Gerer le serveur.",
		"error_failed":          "Une erreur est survenue, reessaie.",
		"error_unknown":         "Sous-commande inconnue.",
		"error_unknown_feature": "Module inconnu. Modules valides : %s",
		"error_unknown_name":    "Seuil inconnu. Seuils valides : %s",
		"error_out_of_range":    "`%s` doit etre entre %g et %g.",
		"error_missing_user":    "Choisis un utilisateur.",
	},
}

func normalizeLang(lang string) string {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if strings.HasPrefix(lang, langFR) {
		return langFR
	}
	return langEN
}

func translate(lang, key string) string {
	if value, ok := catalog[normalizeLang(lang)][key]; ok {
		return value
	}
	if value, ok := catalog[langEN][key]; ok {
		return value
	}
	return key
}

func (b *Bot) t(lang, key string) string {
	return translate(lang, key)
}
