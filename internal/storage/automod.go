package storage

import (
	"context"
	"fmt"
	"strings"

	"luna-guard/internal/automod"
)

// AutomodConfig loads the stored overrides for a guild. found is false when
// the guild was never configured, in which case defaults apply.
func (s *Store) AutomodConfig(ctx context.Context, guildID string) (automod.GuildConfig, bool, error) {
	cfg := automod.GuildConfig{
		GuildID:    guildID,
		Features:   make(map[string]bool),
		Thresholds: make(map[string]float64),
	}

	settings, err := s.GetGuildSettings(ctx, guildID, GuildSettings{})
	if err != nil {
		return cfg, false, fmt.Errorf("load guild settings: %w", err)
	}
	cfg.LogChannelID = settings.LogChannel

	var found bool
	if err := s.queryRow(ctx, `SELECT COUNT(*) > 0 FROM guild_settings WHERE guild_id = ?`, guildID).Scan(&found); err != nil {
		return cfg, false, fmt.Errorf("lookup guild: %w", err)
	}

	rows, err := s.query(ctx, `SELECT feature, enabled FROM automod_features WHERE guild_id = ?`, guildID)
	if err != nil {
		return cfg, false, fmt.Errorf("load features: %w", err)
	}
	for rows.Next() {
		var feature string
		var enabled bool
		if err := rows.Scan(&feature, &enabled); err != nil {
			rows.Close()
			return cfg, false, err
		}
		cfg.Features[feature] = enabled
	}
	rows.Close()

	rows, err = s.query(ctx, `SELECT name, value FROM automod_thresholds WHERE guild_id = ?`, guildID)
	if err != nil {
		return cfg, false, fmt.Errorf("load thresholds: %w", err)
	}
	for rows.Next() {
		var name string
		var value float64
		if err := rows.Scan(&name, &value); err != nil {
			rows.Close()
			return cfg, false, err
		}
		cfg.Thresholds[name] = value
	}
	rows.Close()

	words, err := s.ListFilterWords(ctx, guildID)
	if err != nil {
		return cfg, false, err
	}
	cfg.Words = words
	return cfg, found, nil
}

func (s *Store) SetFeature(ctx context.Context, guildID, feature string, enabled bool) error {
	if err := s.EnsureGuild(ctx, guildID); err != nil {
		return err
	}
	_, err := s.exec(ctx, `
		INSERT INTO automod_features (guild_id, feature, enabled)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, feature) DO UPDATE SET enabled = excluded.enabled
	`, guildID, feature, enabled)
	return err
}

// SetThreshold stores a value that was already checked by
// automod.ValidateThreshold.
func (s *Store) SetThreshold(ctx context.Context, guildID, name string, value float64) error {
	if err := s.EnsureGuild(ctx, guildID); err != nil {
		return err
	}
	_, err := s.exec(ctx, `
		INSERT INTO automod_thresholds (guild_id, name, value)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, name) DO UPDATE SET value = excluded.value
	`, guildID, name, value)
	return err
}

// AddFilterWord appends word to the guild list. Matching is case-insensitive
// so a word already present in another case is not added again.
func (s *Store) AddFilterWord(ctx context.Context, guildID, word string) (bool, error) {
	word = strings.TrimSpace(word)
	if word == "" {
		return false, nil
	}
	if err := s.EnsureGuild(ctx, guildID); err != nil {
		return false, err
	}
	res, err := s.exec(ctx, `
		INSERT INTO filter_words (guild_id, word, word_key)
		VALUES (?, ?, ?)
		ON CONFLICT(guild_id, word_key) DO NOTHING
	`, guildID, word, strings.ToLower(word))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (s *Store) RemoveFilterWord(ctx context.Context, guildID, word string) (bool, error) {
	res, err := s.exec(ctx, `DELETE FROM filter_words WHERE guild_id = ? AND word_key = ?`, guildID, strings.ToLower(strings.TrimSpace(word)))
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// ListFilterWords returns words in insertion order with their stored case.
func (s *Store) ListFilterWords(ctx context.Context, guildID string) ([]string, error) {
	rows, err := s.query(ctx, `SELECT word FROM filter_words WHERE guild_id = ? ORDER BY id`, guildID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var words []string
	for rows.Next() {
		var word string
		if err := rows.Scan(&word); err != nil {
			return nil, err
		}
		words = append(words, word)
	}
	return words, rows.Err()
}
