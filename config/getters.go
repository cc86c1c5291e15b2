package config

// All returns every loaded key with its value, flattened with "." delimiters.
func (c *Config) All() map[string]any {
	if c == nil || c.k == nil {
		return map[string]any{}
	}
	return c.k.All()
}
