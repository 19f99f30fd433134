package config

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/mailmind/mailmind/internal/core"
)

// Profile is the user-facing JSON file carrying everything needed to
// triage a mailbox: the base64-encoded credential blob, the LLMSuite
// endpoint and the classification rules. The engine consumes this
// schema; it does not own where the file lives.
type Profile struct {
	// Credentials is a base64-encoded JSON blob with
	// username/password/clientId/tenantId. It is kept encoded here so an
	// exported profile round-trips unchanged.
	Credentials string          `json:"credentials"`
	LLMSuite    LLMSuiteProfile `json:"llmsuite"`
	Rules       []core.Rule     `json:"rules"`
}

// LLMSuiteProfile is the reasoning endpoint section of the profile.
type LLMSuiteProfile struct {
	BaseURL string `json:"baseUrl"`
	APIKey  string `json:"apiKey"`
	Model   string `json:"model"`
}

// ParseProfile parses and validates a profile document.
func ParseProfile(data []byte) (*Profile, error) {
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("profile is not valid JSON: %w", err)
	}
	if p.Credentials == "" {
		return nil, fmt.Errorf("profile is missing 'credentials' field")
	}
	if p.LLMSuite.BaseURL == "" || p.LLMSuite.APIKey == "" {
		return nil, fmt.Errorf("profile is missing 'llmsuite.baseUrl' or 'llmsuite.apiKey'")
	}
	if p.LLMSuite.Model == "" {
		p.LLMSuite.Model = "gpt-4o"
	}
	// Rules are optional on first load
	if p.Rules == nil {
		p.Rules = []core.Rule{}
	}
	return &p, nil
}

// LoadProfile reads and parses the profile file at path.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return ParseProfile(data)
}

// Encode serialises the profile for export, credentials still encoded.
func (p *Profile) Encode() ([]byte, error) {
	return json.MarshalIndent(p, "", "  ")
}

// DecodeCredentials decodes and validates the base64 credential blob.
func (p *Profile) DecodeCredentials() (core.Credentials, error) {
	raw, err := base64.StdEncoding.DecodeString(p.Credentials)
	if err != nil {
		return core.Credentials{}, fmt.Errorf("invalid credentials block: %w", err)
	}
	var creds core.Credentials
	if err := json.Unmarshal(raw, &creds); err != nil {
		return core.Credentials{}, fmt.Errorf("invalid credentials block: %w", err)
	}
	if creds.Username == "" {
		return core.Credentials{}, fmt.Errorf("missing field in credentials: username")
	}
	if creds.Password == "" {
		return core.Credentials{}, fmt.Errorf("missing field in credentials: password")
	}
	return creds, nil
}

// ExampleProfile builds a profile with placeholder values for first-time
// setup.
func ExampleProfile() *Profile {
	creds, _ := json.Marshal(core.Credentials{
		Username: "user@yourcompany.com",
		Password: "YourPasswordHere",
		ClientID: "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx",
		TenantID: "xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx",
	})

	return &Profile{
		Credentials: base64.StdEncoding.EncodeToString(creds),
		LLMSuite: LLMSuiteProfile{
			BaseURL: "https://your-llmsuite-instance.com/v1",
			APIKey:  "your-llmsuite-api-key",
			Model:   "gpt-4o",
		},
		Rules: []core.Rule{
			{
				ID:        uuid.NewString(),
				Name:      "Flag Urgent Emails",
				Condition: "Subject or body contains URGENT, ASAP, immediately, or critical",
				Action:    "Flag the email and set importance to high",
				Enabled:   true,
			},
			{
				ID:        uuid.NewString(),
				Name:      "Archive Newsletters",
				Condition: "Email looks like a newsletter, marketing or promotional content",
				Action:    "Move to archive folder and mark as read",
				Enabled:   true,
			},
		},
	}
}
