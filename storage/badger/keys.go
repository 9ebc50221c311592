package badger

// Key prefixes for different data types
const (
	manifestPrefix = "manent"
)

// makeManifestKey generates a key for a manifest entry by item key.
// Item keys are normalized paths or canonical URLs and are stored verbatim,
// so the badger key order matches lexicographic item-key order.
func makeManifestKey(itemKey string) []byte {
	prefix := manifestPrefix + ":"
	buf := make([]byte, 0, len(prefix)+len(itemKey))
	buf = append(buf, prefix...)
	buf = append(buf, itemKey...)
	return buf
}

// manifestKeyPrefix returns the prefix matching every manifest entry key.
func manifestKeyPrefix() []byte {
	return []byte(manifestPrefix + ":")
}
