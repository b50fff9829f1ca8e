package respond

import "regexp"

// redactions run in order, most specific first. The OpenAI pattern excludes '*'
// so an already masked Anthropic key is left alone.
var redactions = []struct {
	pattern *regexp.Regexp
	replace string
}{
	{regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`), "sk-ant-****"},
	{regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`), "sk-****"},
	{regexp.MustCompile(`gsk_[a-zA-Z0-9]{10,}`), "gsk_****"},
	{regexp.MustCompile(`hf_[a-zA-Z0-9]{10,}`), "hf_****"},
	{regexp.MustCompile(`AIza[0-9A-Za-z_-]{20,}`), "AIza****"},
	{regexp.MustCompile(`\b(AKIA|ASIA)[0-9A-Z]{16}\b`), "${1}****"},
	{regexp.MustCompile(`://([^:/\s]+):([^@\s]+)@`), "://$1:****@"},
}

// SanitizeError returns err's message with provider keys, AWS access key IDs
// and DSN passwords masked. It is safe to log the result.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	msg := err.Error()
	for _, r := range redactions {
		msg = r.pattern.ReplaceAllString(msg, r.replace)
	}
	return msg
}
