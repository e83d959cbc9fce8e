package propagator

import (
	"encoding/json"
	"regexp"

	"github.com/vaultsync/core/pkg/errors"
	"github.com/vaultsync/core/pkg/model"
)

// decodeData unmarshals an envelope's Data field into out.
func decodeData(env model.Envelope, out interface{}) error {
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return errors.NewDecodeError("decoding response data", err)
	}
	return nil
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// stripHTMLTags defensively strips any HTML-looking tags from a
// decrypted name or MIME string, a belt-and-braces measure against
// server or legacy-client corruption, retained per spec.md's Design Notes.
func stripHTMLTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}
