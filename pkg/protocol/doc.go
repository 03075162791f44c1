// Package protocol defines the wire types exchanged with the client.
//
// Messages are JSON-RPC 2.0 objects, one per line. Every response echoes the
// request id unchanged and carries either a result or an error, never both.
//
// # Package Organization
//
//   - jsonrpc.go: request/response envelopes, error codes and the envelope builder
//   - mcp.go: method names and the initialize result
//   - tools.go, resources.go, prompts.go: params and results per capability kind
//
// # Methods
//
//	initialize      {}                 -> {protocolVersion, serverName, serverVersion, serverInfo}
//	tools/list      {}                 -> {tools:[...]}
//	tools/call      {name, arguments}  -> {content}
//	resources/list  {}                 -> {resources:[...]}
//	resources/read  {uri}              -> {contents:[{uri, mimeType, text}]}
//	prompts/list    {}                 -> {prompts:[...]}
//	prompts/get     {name, arguments?} -> {description, messages:[...]}
package protocol
