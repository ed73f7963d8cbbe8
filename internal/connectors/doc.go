// Package connectors holds the adapters that read content from a storage
// backend. The filesystem connector walks and reads local roots; cloud
// folders are searched through their local sync directories.
package connectors
