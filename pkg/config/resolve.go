package config

import "os"

// DefaultDateRegex matches an ISO-8601-like timestamp at the start of a line,
// optionally inside square brackets.
const DefaultDateRegex = `^\[?(\d{4}-\d{2}-\d{2}[T ]\d{2}:\d{2}:\d{2}(?:[.,]\d+)?(?:Z|[+-]\d{2}:?\d{2})?)`

// Environment variables consulted when a flag is not given.
const (
	EnvDateRegex = "LOGSLICE_DATE_REGEX"
	EnvDateGrok  = "LOGSLICE_DATE_GROK"
	EnvOnBadDate = "LOGSLICE_ON_BAD_DATE"
	EnvColor     = "LOGSLICE_COLOR"
	EnvDB        = "LOGSLICE_DB"
)

// Resolve returns the explicit value if set, then the environment variable
// env, then the config file value, and finally def.
func Resolve(explicit, env, file, def string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv(env); v != "" {
		return v
	}
	if file != "" {
		return file
	}
	return def
}

// datePattern is the date pattern chosen from one configuration layer.
type datePattern struct {
	regex string
	grok  string
	layer string
}

// resolveDatePattern picks the regex/grok pair from the first layer that sets
// either, so a flag regex is never shadowed by a grok from the config file.
func resolveDatePattern(o Options, f File) datePattern {
	layers := []datePattern{
		{regex: o.DateRegex, grok: o.DateGrok, layer: "flags"},
		{regex: os.Getenv(EnvDateRegex), grok: os.Getenv(EnvDateGrok), layer: "environment"},
		{regex: f.DateRegex, grok: f.DateGrok, layer: "config file"},
	}
	for _, l := range layers {
		if l.regex != "" || l.grok != "" {
			return l
		}
	}
	return datePattern{regex: DefaultDateRegex, layer: "default"}
}
