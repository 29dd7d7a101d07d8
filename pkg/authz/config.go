package authz

import (
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

// Config captures all inputs necessary to initialize the Casbin enforcer.
// Paths take precedence over the inline text when both are set.
type Config struct {
	ModelText  string
	PolicyText string
	ModelPath  string
	PolicyPath string
	Logger     *logrus.Logger
	// Validate vets parsed rules before they replace the active policy.
	Validate func([]Rule) error
}

func (c Config) validate() error {
	if c.ModelPath == "" && c.ModelText == "" {
		return configError("missing model")
	}
	if c.PolicyPath == "" && c.PolicyText == "" {
		return configError("missing policy")
	}
	return nil
}

func (c Config) normalized() Config {
	if c.ModelPath != "" {
		c.ModelPath = filepath.Clean(c.ModelPath)
	}
	if c.PolicyPath != "" {
		c.PolicyPath = filepath.Clean(c.PolicyPath)
	}
	return c
}

func (c Config) policy() (string, error) {
	if c.PolicyPath == "" {
		return c.PolicyText, nil
	}
	data, err := os.ReadFile(c.PolicyPath)
	if err != nil {
		return "", configError("read policy %s: %v", c.PolicyPath, err)
	}
	return string(data), nil
}
