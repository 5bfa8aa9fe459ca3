package domain

// ExecTarget is the provider-specific coordinate a language tag resolves to.
type ExecTarget struct {
	Language string `yaml:"language"`
	Version  string `yaml:"version"`
}

// RunResult is the raw outcome of one provider call. Providers are free
// to omit any of the three text fields; Succeeded is the only field the
// gateway trusts unconditionally.
type RunResult struct {
	Succeeded   bool
	Diagnostics string
	Output      string
	ErrorText   string
}
