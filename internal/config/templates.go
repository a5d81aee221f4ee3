package config

import (
	"fmt"
	"os"
)

func Template() string {
	return wirectlTemplate
}

func WriteTemplate(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config already exists: %s", path)
		}
	}
	return os.WriteFile(path, []byte(wirectlTemplate), 0o600)
}

const wirectlTemplate = `log_level = "info"
log_json = false
log_timestamp = true

# ensicoin mainnet; 0 accepts any magic
magic = 422021
max_payload_bytes = 8388608

# frame decode uses these shapes when --type is not given
[payloads]
# ping = "u64"
# getblocks = "seq<hash>"
`
