package bot

import (
	"luna-guard/internal/automod"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const commandName = "automod"

// registerCommands syncs global commands: known ones are edited in place and
// stale ones removed.
func (b *Bot) registerCommands() error {
	commands := []*discordgo.ApplicationCommand{automodCommand()}

	appID := b.session.State.User.ID
	existing, err := b.session.ApplicationCommands(appID, "")
	if err != nil {
		for _, cmd := range commands {
			if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
				return err
			}
		}
		return nil
	}

	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, cmd := range existing {
		existingByName[cmd.Name] = cmd
	}

	desired := make(map[string]struct{}, len(commands))
	for _, cmd := range commands {
		desired[cmd.Name] = struct{}{}
		if current, ok := existingByName[cmd.Name]; ok {
			if _, err := b.session.ApplicationCommandEdit(appID, "", current.ID, cmd); err != nil {
				return err
			}
			continue
		}
		if _, err := b.session.ApplicationCommandCreate(appID, "", cmd); err != nil {
			return err
		}
	}

	for _, cmd := range existing {
		if _, ok := desired[cmd.Name]; ok {
			continue
		}
		if err := b.session.ApplicationCommandDelete(appID, "", cmd.ID); err != nil {
			b.logger.Debug("stale command delete failed", zap.String("command", cmd.Name), zap.Error(err))
		}
	}
	return nil
}

func automodCommand() *discordgo.ApplicationCommand {
	manageServer := int64(discordgo.PermissionManageServer)
	dmPermission := false

	featureChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(automod.Features))
	for _, feature := range automod.Features {
		featureChoices = append(featureChoices, &discordgo.ApplicationCommandOptionChoice{Name: feature, Value: feature})
	}
	thresholdChoices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(automod.Thresholds))
	for _, name := range automod.ThresholdNames() {
		thresholdChoices = append(thresholdChoices, &discordgo.ApplicationCommandOptionChoice{Name: name, Value: name})
	}

	featureOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "feature",
		Description: "Automod feature",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.French: "Module automod",
		},
		Required: true,
		Choices:  featureChoices,
	}
	userOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        "user",
		Description: "Member",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.French: "Membre",
		},
		Required: true,
	}
	wordOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "word",
		Description: "Word or expression",
		DescriptionLocalizations: map[discordgo.Locale]string{
			discordgo.French: "Mot ou expression",
		},
		Required:  true,
		MaxLength: 100,
	}

	return &discordgo.ApplicationCommand{
		Name:        commandName,
		Description: "Configure automatic moderation",
		DescriptionLocalizations: &map[discordgo.Locale]string{
			discordgo.French:    "Configurer la moderation automatique",
			discordgo.EnglishUS: "Configure automatic moderation",
		},
		DefaultMemberPermissions: &manageServer,
		DMPermission:             &dmPermission,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "status",
				Description: "Show automod settings",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Afficher les reglages automod",
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "enable",
				Description: "Enable a feature",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Activer un module",
				},
				Options: []*discordgo.ApplicationCommandOption{featureOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "disable",
				Description: "Disable a feature",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Desactiver un module",
				},
				Options: []*discordgo.ApplicationCommandOption{featureOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "threshold",
				Description: "Set a detection threshold",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Regler un seuil de detection",
				},
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "Threshold",
						DescriptionLocalizations: map[discordgo.Locale]string{
							discordgo.French: "Seuil",
						},
						Required: true,
						Choices:  thresholdChoices,
					},
					{
						Type:        discordgo.ApplicationCommandOptionNumber,
						Name:        "value",
						Description: "New value",
						DescriptionLocalizations: map[discordgo.Locale]string{
							discordgo.French: "Nouvelle valeur",
						},
						Required: true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommandGroup,
				Name:        "filter",
				Description: "Manage the word filter",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Gerer le filtre de mots",
				},
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "add",
						Description: "Add a word",
						DescriptionLocalizations: map[discordgo.Locale]string{
							discordgo.French: "Ajouter un mot",
						},
						Options: []*discordgo.ApplicationCommandOption{wordOption},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "remove",
						Description: "Remove a word",
						DescriptionLocalizations: map[discordgo.Locale]string{
							discordgo.French: "Retirer un mot",
						},
						Options: []*discordgo.ApplicationCommandOption{wordOption},
					},
					{
						Type:        discordgo.ApplicationCommandOptionSubCommand,
						Name:        "list",
						Description: "List filtered words",
						DescriptionLocalizations: map[discordgo.Locale]string{
							discordgo.French: "Lister les mots filtres",
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "logchannel",
				Description: "Set or clear the automod log channel",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Definir ou retirer le salon de logs",
				},
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:         discordgo.ApplicationCommandOptionChannel,
						Name:         "channel",
						Description:  "Log channel, empty to clear",
						ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
						DescriptionLocalizations: map[discordgo.Locale]string{
							discordgo.French: "Salon de logs, vide pour retirer",
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "violations",
				Description: "Show a member's violations",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Voir les infractions d'un membre",
				},
				Options: []*discordgo.ApplicationCommandOption{userOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "reset",
				Description: "Reset a member's violation count",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Remettre a zero les infractions d'un membre",
				},
				Options: []*discordgo.ApplicationCommandOption{userOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "report",
				Description: "Summarize automod activity",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Resume de l'activite automod",
				},
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "period",
						Description: "day or week",
						DescriptionLocalizations: map[discordgo.Locale]string{
							discordgo.French: "day ou week",
						},
						Required: true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "day", Value: "day"},
							{Name: "week", Value: "week"},
						},
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "language",
				Description: "Set the bot language",
				DescriptionLocalizations: map[discordgo.Locale]string{
					discordgo.French: "Definir la langue du bot",
				},
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "value",
						Description: "fr or en",
						DescriptionLocalizations: map[discordgo.Locale]string{
							discordgo.French: "fr ou en",
						},
						Required: true,
						Choices: []*discordgo.ApplicationCommandOptionChoice{
							{Name: "fr", Value: langFR},
							{Name: "en", Value: langEN},
						},
					},
				},
			},
		},
	}
}
