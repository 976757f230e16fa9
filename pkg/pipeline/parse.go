package pipeline

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/matzehuels/crmmap/pkg/density"
	crmerrors "github.com/matzehuels/crmmap/pkg/errors"
)

// MaxRequestBytes caps the size of an encoded request.
const MaxRequestBytes = 8 << 20

// DecodeRequest reads a JSON request from r over the layout settings of
// base (see [Request.Defaults]): fields the body leaves out keep base's
// value. Unknown fields are rejected so a misspelled option fails loudly
// instead of silently taking its default. The request is validated and
// defaulted before it is returned.
func DecodeRequest(r io.Reader, base Request) (Request, error) {
	req := base.Defaults()
	dec := json.NewDecoder(io.LimitReader(r, MaxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return Request{}, crmerrors.Wrap(crmerrors.ErrCodeInvalidInput, err, "decode request")
	}
	if err := req.ValidateAndSetDefaults(); err != nil {
		return Request{}, err
	}
	return req, nil
}

// ParseIDList splits a comma-separated list of ids as passed on the command
// line or in a query string. Blank entries are dropped.
func ParseIDList(s string) ([]string, error) {
	var ids []string
	for _, part := range strings.Split(s, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if err := crmerrors.ValidateID("client", id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseDensity(s string) (density.Mode, error) {
	m, err := density.ParseMode(s)
	if err != nil {
		return "", crmerrors.Wrap(crmerrors.ErrCodeInvalidDensityMode, err, "invalid density mode")
	}
	return m, nil
}

// ParseFormat normalizes and validates an output format name.
func ParseFormat(s string) (string, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	if f == "" {
		return FormatJSON, nil
	}
	if err := ValidateFormat(f); err != nil {
		return "", fmt.Errorf("parse format: %w", err)
	}
	return f, nil
}
