package service

import (
	"encoding/json"
	"fmt"

	vaultDomain "github.com/allisson/connvault/internal/vault/domain"
)

// EncodePlainJSON renders profiles as indented JSON. The output contains
// passwords in clear text.
func EncodePlainJSON(profiles []vaultDomain.ConnectionProfile) ([]byte, error) {
	if profiles == nil {
		profiles = []vaultDomain.ConnectionProfile{}
	}
	data, err := json.MarshalIndent(profiles, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode profiles: %w", err)
	}
	return append(data, '\n'), nil
}

// DecodePlainJSON parses the output of EncodePlainJSON. The top-level value
// must be an array; anything else is ErrInvalidPlainJSON.
func DecodePlainJSON(data []byte) ([]vaultDomain.ConnectionProfile, error) {
	return decodeProfiles(data, vaultDomain.ErrInvalidPlainJSON)
}
