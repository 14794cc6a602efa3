package commands

const (
	_etc = "/usr/local/etc/com.github.uhppoted"
	_var = "/usr/local/var/com.github.uhppoted"

	DEFAULT_WORKDIR     = _var + "/docgen"
	DEFAULT_CREDENTIALS = _etc + "/docgen/.google/credentials.json"
	DEFAULT_CONFIG      = _etc + "/docgen/docgen.yaml"
)
