package sheetlog

// Option applies a configuration option to the Appender.
type Option func(*Appender)

// WithWorksheet sets the worksheet receiving case rows. Default: Sheet1.
func WithWorksheet(name string) Option {
	return func(a *Appender) {
		if name != "" {
			a.worksheet = name
		}
	}
}
