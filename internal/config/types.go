package config

// ContextBudget bounds the size of the composed context document.
// Byte caps apply per section; a truncated section always carries an
// explicit marker stating how much was omitted.
type ContextBudget struct {
	// ChecklistItems caps the pending and in-progress items surfaced in
	// full mode. The remainder is summarized as a count.
	ChecklistItems int `koanf:"checklist_items"`

	// ErrorRecords caps how many of the most recent error records are
	// surfaced.
	ErrorRecords int `koanf:"error_records"`

	// SectionBytes caps each text section (state record, checklist,
	// task spec, errors).
	SectionBytes int `koanf:"section_bytes"`

	// ContractBytes caps the API contract section. Zero includes the
	// whole file verbatim: partial signatures are worse than none, so
	// the contract is only cut when a cap is set deliberately.
	ContractBytes int `koanf:"contract_bytes"`
}

// SyncConfig holds Synchronizer options.
type SyncConfig struct {
	// MaxRetries is the default retry budget for a fresh task record.
	MaxRetries int `koanf:"max_retries"`
}

// LogConfig controls diagnostic output. Logs go to stderr; stdout is
// reserved for hook payloads.
type LogConfig struct {
	Level  string `koanf:"level"`  // debug, info, warn, error
	Format string `koanf:"format"` // console or json
}

// Config represents the .devloop/config.yaml file.
type Config struct {
	Context ContextBudget `koanf:"context"`
	Sync    SyncConfig    `koanf:"sync"`
	Log     LogConfig     `koanf:"log"`
}
