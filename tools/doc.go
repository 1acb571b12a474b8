// Package tools provides the builtin tool set: shell execution, file
// reading and writing, exact-string edits, glob and regexp search, HTTP
// fetch, and a todo formatter. RegisterDefaults installs the standard set
// into a registry in its advertised order.
package tools
