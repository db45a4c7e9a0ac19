package settings

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/leofalp/duochat/internal/utils"
)

// BrowserStorageKey is the local storage key the browser client used.
const BrowserStorageKey = "aiChatApiSettings"

// ImportBrowserJSON parses settings exported from the browser client. It
// accepts the settings object itself or a storage dump holding it under
// BrowserStorageKey, either as an object or as the JSON string local storage
// keeps. Hand-edited input (unquoted keys, single quotes, trailing commas)
// is repaired before decoding. Unknown keys are ignored.
func ImportBrowserJSON(data string) (Settings, error) {
	raw, err := utils.ParseStringAs[map[string]any](data)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to parse settings: %w", err)
	}

	if nested, ok := raw[BrowserStorageKey]; ok {
		switch value := nested.(type) {
		case map[string]any:
			raw = value
		case string:
			if raw, err = utils.ParseStringAs[map[string]any](value); err != nil {
				return Settings{}, fmt.Errorf("failed to parse %s: %w", BrowserStorageKey, err)
			}
		default:
			return Settings{}, fmt.Errorf("unexpected %s value of type %T", BrowserStorageKey, nested)
		}
	}

	var s Settings
	if err := mapstructure.WeakDecode(raw, &s); err != nil {
		return Settings{}, fmt.Errorf("failed to decode settings: %w", err)
	}
	return s, nil
}
