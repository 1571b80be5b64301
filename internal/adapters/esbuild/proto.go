package esbuild

import (
	"regexp"
)

// protoAssignment matches a statement of the form `target.__proto__ = value;`.
var protoAssignment = regexp.MustCompile(`(?m)^([ \t]*)([\w$][\w$.]*)\.__proto__[ \t]*=[ \t]*([^;\n]+);`)

// defaultsHelper copies the own properties of defaults that obj does not define yet.
const defaultsHelper = `
function _defaults(obj, defaults) {
  var keys = Object.getOwnPropertyNames(defaults);
  for (var i = 0; i < keys.length; i++) {
    var key = keys[i];
    var value = Object.getOwnPropertyDescriptor(defaults, key);
    if (value && value.configurable && obj[key] === undefined) {
      Object.defineProperty(obj, key, value);
    }
  }
  return obj;
}
`

// rewriteProtoAssignments replaces `x.__proto__ = y;` statements with `_defaults(x, y);` and
// appends the helper when at least one statement was rewritten.
func rewriteProtoAssignments(source []byte) []byte {
	if !protoAssignment.Match(source) {
		return source
	}
	out := protoAssignment.ReplaceAll(source, []byte("${1}_defaults(${2}, ${3});"))
	return append(out, defaultsHelper...)
}
