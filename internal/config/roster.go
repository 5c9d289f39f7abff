package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"

	apperrors "salescli/internal/errors"
)

// RosterMember is one entry in the team roster.
type RosterMember struct {
	Name  string `yaml:"name" validate:"required"`
	Email string `yaml:"email" validate:"required,email"`
}

// rosterFile matches the on-disk shape of team_roster.yaml.
type rosterFile struct {
	TeamMembers []RosterMember `yaml:"team_members"`
}

// LoadRoster reads the team roster file and returns the members in file
// order. The batch mailer processes them sequentially in exactly this order.
func LoadRoster(path string) ([]RosterMember, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewConfigError(
			fmt.Sprintf("team roster file not found at %s", path), err)
	}

	var roster rosterFile
	if err := yaml.Unmarshal(data, &roster); err != nil {
		return nil, apperrors.NewConfigError("failed to parse team roster file", err)
	}

	validate := validator.New()
	for i, member := range roster.TeamMembers {
		if err := validate.Struct(member); err != nil {
			return nil, apperrors.NewConfigError(
				fmt.Sprintf("invalid roster entry %d (%q)", i+1, member.Name), err)
		}
	}

	return roster.TeamMembers, nil
}
