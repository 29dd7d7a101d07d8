package setting

import (
	"maps"
	"strconv"
)

// View is a resolved settings map: defaults overlaid with stored rows of one scope.
type View struct {
	values map[string]string
}

// Resolve overlays rows onto defaults. Rows for keys outside defaults are ignored.
func Resolve(defaults map[string]string, rows []Setting) View {
	values := maps.Clone(defaults)
	for _, row := range rows {
		if _, ok := values[row.Key]; ok {
			values[row.Key] = row.Value
		}
	}
	return View{values: values}
}

func (v View) Get(key string) string {
	return v.values[key]
}

// Map returns a copy suitable for serialization.
func (v View) Map() map[string]string {
	return maps.Clone(v.values)
}

func (v View) LogoSize() int {
	n, err := strconv.Atoi(v.values[KeyLogoSize])
	if err != nil {
		n, _ = strconv.Atoi(Defaults[KeyLogoSize])
	}
	return n
}

func (v View) WatermarkOpacity() float64 {
	f, err := strconv.ParseFloat(v.values[KeyWatermarkOpacity], 64)
	if err != nil {
		f, _ = strconv.ParseFloat(Defaults[KeyWatermarkOpacity], 64)
	}
	return f
}

// EmailConfig is the typed projection of the SMTP keys.
type EmailConfig struct {
	UseCustomEmail bool   `json:"useCustomEmail"`
	SMTPHost       string `json:"smtpHost"`
	SMTPPort       int    `json:"smtpPort"`
	SMTPUser       string `json:"smtpUser"`
	SMTPPassword   string `json:"smtpPassword,omitempty"`
	SMTPFrom       string `json:"smtpFrom"`
	SMTPFromName   string `json:"smtpFromName"`
	UseEncryption  bool   `json:"useEncryption"`
	PasswordSet    bool   `json:"passwordSet"`
}

func (v View) EmailConfig() EmailConfig {
	port, err := strconv.Atoi(v.values[KeySMTPPort])
	if err != nil {
		port, _ = strconv.Atoi(EmailDefaults[KeySMTPPort])
	}
	return EmailConfig{
		UseCustomEmail: v.values[KeyUseCustomEmail] == "true",
		SMTPHost:       v.values[KeySMTPHost],
		SMTPPort:       port,
		SMTPUser:       v.values[KeySMTPUser],
		SMTPPassword:   v.values[KeySMTPPassword],
		SMTPFrom:       v.values[KeySMTPFrom],
		SMTPFromName:   v.values[KeySMTPFromName],
		UseEncryption:  v.values[KeyUseEncryption] == "true",
		PasswordSet:    v.values[KeySMTPPassword] != "",
	}
}

// Redacted drops the SMTP password.
func (c EmailConfig) Redacted() EmailConfig {
	c.SMTPPassword = ""
	return c
}
