package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден
	ErrNotFound           = errors.New("requested resource not found")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrStageNotFound      = errors.New("stage not found")
	ErrGroupNotFound      = errors.New("group not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrMatchNotFound      = errors.New("match not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrInvalidReference     = errors.New("referenced resource does not exist")
	ErrMatchSameTeams       = errors.New("home and away team must differ")
	ErrMatchTeamNotInLineup = errors.New("team does not play in this match")
	ErrPlayerNotInTeam      = errors.New("player does not belong to this team")
	ErrNotEnoughTeams       = errors.New("at least two teams are required")

	// Ошибки конфликтов
	ErrTournamentNameConflict = errors.New("tournament name already exists")
	ErrStageNameConflict      = errors.New("stage name already used in this tournament")
	ErrGroupNameConflict      = errors.New("group name already used in this stage")
	ErrTeamNameConflict       = errors.New("team name is already in use")
	ErrTeamInUse              = errors.New("team cannot be deleted as it has matches")

	// Таблицы
	ErrStandingsUnavailable = errors.New("standings unavailable")
	ErrArchiveDisabled      = errors.New("standings archive is not configured")
)

// ValidationError carries per-field messages; it matches ErrValidationFailed.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return ErrValidationFailed.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidationFailed
}

func fieldError(field, message string) error {
	return &ValidationError{Fields: map[string]string{field: message}}
}
