// Package infra contains technical adapters such as the utility API client,
// the reading archive, and metrics exporters. These packages should depend
// only on the interfaces defined in the core packages.
package infra
