// Package profile holds the runtime configuration of the habla backend.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Profile is the configuration to start the dispatcher and services.
type Profile struct {
	// Mode can be "prod" or "dev" or "demo"
	Mode string
	// Data is the data directory for the sqlite driver
	Data string
	// DSN points to where habla stores its own data
	DSN string
	// Driver is the storage driver (memory, sqlite or firestore)
	Driver string
	// FirestoreProject is the GCP project for the firestore driver
	FirestoreProject string
	// Version is the current version of the backend
	Version string

	// DefaultTimezone is applied to users without a configured timezone
	DefaultTimezone string
	// ToleranceMinutes is the schedule-matching tolerance window
	ToleranceMinutes int
	// DispatchIntervalMinutes is the reminder dispatch cadence
	DispatchIntervalMinutes int

	// Web Push (VAPID) identity
	VAPIDSubject    string // HABLA_VAPID_SUBJECT
	VAPIDPublicKey  string // HABLA_VAPID_PUBLIC_KEY
	VAPIDPrivateKey string // HABLA_VAPID_PRIVATE_KEY

	// Evaluator configuration
	EvaluatorProvider string // HABLA_EVALUATOR_PROVIDER (default: gemini)
	EvaluatorAPIKey   string // HABLA_EVALUATOR_API_KEY
	EvaluatorBaseURL  string // HABLA_EVALUATOR_BASE_URL
	EvaluatorModel    string // HABLA_EVALUATOR_MODEL
}

func (p *Profile) IsDev() bool {
	return p.Mode != "prod"
}

// getEnvOrDefault returns the environment variable value or the default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// FromEnv loads configuration from HABLA_* environment variables.
func (p *Profile) FromEnv() {
	p.DefaultTimezone = getEnvOrDefault("HABLA_DEFAULT_TIMEZONE", "America/Asuncion")
	p.FirestoreProject = os.Getenv("HABLA_FIRESTORE_PROJECT")

	p.VAPIDSubject = os.Getenv("HABLA_VAPID_SUBJECT")
	p.VAPIDPublicKey = os.Getenv("HABLA_VAPID_PUBLIC_KEY")
	p.VAPIDPrivateKey = os.Getenv("HABLA_VAPID_PRIVATE_KEY")

	p.EvaluatorProvider = getEnvOrDefault("HABLA_EVALUATOR_PROVIDER", "gemini")
	p.EvaluatorAPIKey = os.Getenv("HABLA_EVALUATOR_API_KEY")
	p.EvaluatorBaseURL = os.Getenv("HABLA_EVALUATOR_BASE_URL")
	p.EvaluatorModel = os.Getenv("HABLA_EVALUATOR_MODEL")
}

func checkDataDir(dataDir string) (string, error) {
	// Convert to absolute path if relative path is supplied.
	if !filepath.IsAbs(dataDir) {
		relativeDir := filepath.Join(filepath.Dir(os.Args[0]), dataDir)
		absDir, err := filepath.Abs(relativeDir)
		if err != nil {
			return "", err
		}
		dataDir = absDir
	}

	// Trim trailing \ or / in case user supplies
	dataDir = strings.TrimRight(dataDir, "\\/")
	if _, err := os.Stat(dataDir); err != nil {
		return "", errors.Wrapf(err, "unable to access data folder %s", dataDir)
	}
	return dataDir, nil
}

func (p *Profile) Validate() error {
	if p.Mode != "demo" && p.Mode != "dev" && p.Mode != "prod" {
		p.Mode = "demo"
	}

	switch p.Driver {
	case "", "memory":
		p.Driver = "memory"
	case "sqlite":
		if p.Data == "" {
			if p.Mode == "prod" {
				p.Data = "/var/opt/habla"
			} else {
				p.Data = "."
			}
		}
		dataDir, err := checkDataDir(p.Data)
		if err != nil {
			return err
		}
		p.Data = dataDir
		if p.DSN == "" {
			p.DSN = filepath.Join(dataDir, fmt.Sprintf("habla_%s.db", p.Mode))
		}
	case "firestore":
		if p.FirestoreProject == "" {
			return errors.New("firestore driver requires a project id")
		}
	default:
		return errors.Errorf("unknown driver %q", p.Driver)
	}

	if p.ToleranceMinutes < 0 {
		return errors.New("tolerance minutes must be non-negative")
	}
	if p.DispatchIntervalMinutes <= 0 {
		p.DispatchIntervalMinutes = 5
	}

	return nil
}
