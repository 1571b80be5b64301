package finisher

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"regexp"

	"go.trai.ch/knit/internal/core/domain"
)

// inlineSourceMap matches a trailing source map comment carrying a base64 data URL.
var inlineSourceMap = regexp.MustCompile(
	`//[#@] sourceMappingURL=data:application/json(?:;charset=[\w-]+)?;base64,([A-Za-z0-9+/]+={0,2})[ \t]*\r?\n?`,
)

// ExtractSourceMap removes the last inline source map from code and returns the rewritten
// code, now pointing at mapName, together with the decoded map.
func ExtractSourceMap(code []byte, mapName string) (rewritten, sourceMap []byte, err error) {
	matches := inlineSourceMap.FindAllSubmatchIndex(code, -1)
	if len(matches) == 0 {
		return nil, nil, domain.ErrSourceMapNotFound
	}
	last := matches[len(matches)-1]

	encoded := code[last[2]:last[3]]
	sourceMap = make([]byte, base64.StdEncoding.DecodedLen(len(encoded)))
	n, decodeErr := base64.StdEncoding.Decode(sourceMap, encoded)
	if decodeErr != nil {
		return nil, nil, errors.Join(domain.ErrSourceMapInvalid, decodeErr)
	}
	sourceMap = sourceMap[:n]
	if !json.Valid(sourceMap) {
		return nil, nil, domain.ErrSourceMapInvalid
	}

	var out bytes.Buffer
	out.Grow(last[0] + len(mapName) + 24)
	out.Write(code[:last[0]])
	out.WriteString("//# sourceMappingURL=")
	out.WriteString(mapName)
	out.WriteByte('\n')
	out.Write(code[last[1]:])

	return out.Bytes(), sourceMap, nil
}
