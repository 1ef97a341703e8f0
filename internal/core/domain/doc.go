// Package domain contains the core business entities for quarry.
// These types have no external dependencies and represent the
// block-based document model shared by the parsers, the indexer
// and the search engine.
package domain
