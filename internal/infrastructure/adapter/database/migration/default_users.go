package migration

import (
	"context"
	"fmt"
	"os"

	userUseCase "github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/user"
	"gopkg.in/yaml.v3"
)

// seedFile is the layout of the seed users document
type seedFile struct {
	Users []userUseCase.SeedUser `yaml:"users"`
}

// LoadSeedUsers reads the seed accounts from a YAML file
func LoadSeedUsers(path string) ([]userUseCase.SeedUser, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}

	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parsing seed file %s: %w", path, err)
	}
	for i, u := range doc.Users {
		if u.Phone == "" || u.Password == "" {
			return nil, fmt.Errorf("seed user %d: phone and password are required", i)
		}
	}
	return doc.Users, nil
}

// CreateDefaultUsers creates the seed accounts that do not exist yet. An
// empty path seeds nothing.
func CreateDefaultUsers(ctx context.Context, userService *userUseCase.UserUseCase, path string) error {
	if path == "" {
		return nil
	}
	seeds, err := LoadSeedUsers(path)
	if err != nil {
		return err
	}
	return userService.SeedUsers(ctx, seeds)
}
