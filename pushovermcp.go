// Package pushovermcp exposes Pushover push notifications as a Model Context
// Protocol tool. The adapter wires parameter validation, form translation,
// and the upstream HTTP client behind one "send" capability served over
// stdio JSON-RPC.
//
// Subpackages:
//
//	import "github.com/AshikNesin/pushover-mcp/pushover" // upstream API client
//	import "github.com/AshikNesin/pushover-mcp/mcp"      // JSON-RPC server core
//	import "github.com/AshikNesin/pushover-mcp/config"   // YAML config discovery
package pushovermcp
