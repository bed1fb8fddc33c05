/*
Package neorpc contains a set of types used for JSON-RPC communication with Neo
servers. Specific results are defined in the result subpackage.
*/
package neorpc

// JSONRPCVersion is the only JSON-RPC protocol version supported.
const JSONRPCVersion = "2.0"
