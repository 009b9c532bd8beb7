// Package i18n holds the user-facing alert and prompt messages.
package i18n

import (
	"embed"
	"log"

	"github.com/BurntSushi/toml"
	goi18n "github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

const (
	ScanFailed         = "ScanFailed"
	ScanCaptured       = "ScanCaptured"
	ConfirmSave        = "ConfirmSave"
	ScanProcessing     = "ScanProcessing"
	OTPSent            = "OTPSent"
	IncompleteOTP      = "IncompleteOTP"
	TooManyOTPRequests = "TooManyOTPRequests"
	UnknownView        = "UnknownView"
	InvalidUpload      = "InvalidUpload"
)

// Messages localizes message ids for one language.
type Messages struct {
	localizer *goi18n.Localizer
}

// New loads the embedded bundles and returns Messages for lang, falling
// back to English.
func New(lang string) (*Messages, error) {
	bundle := goi18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		return nil, err
	}
	for _, e := range entries {
		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+e.Name()); err != nil {
			return nil, err
		}
	}
	return &Messages{localizer: goi18n.NewLocalizer(bundle, lang, language.English.String())}, nil
}

// T returns the message for id. Unknown ids come back as the id itself.
func (m *Messages) T(id string, data map[string]interface{}) string {
	s, err := m.localizer.Localize(&goi18n.LocalizeConfig{
		MessageID:    id,
		TemplateData: data,
	})
	if err != nil {
		log.Printf("i18n: %v", err)
		return id
	}
	return s
}
