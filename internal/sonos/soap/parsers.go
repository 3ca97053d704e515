package soap

import (
	"bytes"
	"encoding/xml"
	"io"
	"strconv"
	"strings"
)

// lookupTextValue returns the trimmed text of the first element named element.
// Only the local name is matched, so namespace prefixes on the response do not matter.
// Bodies the decoder rejects are searched for the literal open and close tags.
func lookupTextValue(payload []byte, element string) (string, bool) {
	decoder := xml.NewDecoder(bytes.NewReader(payload))
	decoder.Strict = false
	decoder.CharsetReader = func(_ string, input io.Reader) (io.Reader, error) {
		return input, nil
	}
	for {
		tok, err := decoder.Token()
		if err != nil {
			break
		}
		if se, ok := tok.(xml.StartElement); ok && se.Name.Local == element {
			var value string
			if err := decoder.DecodeElement(&value, &se); err != nil {
				break
			}
			return strings.TrimSpace(value), true
		}
	}
	return scanTextValue(payload, element)
}

// scanTextValue finds <element>value</element> by plain substring search.
func scanTextValue(payload []byte, element string) (string, bool) {
	open := []byte("<" + element + ">")
	start := bytes.Index(payload, open)
	if start < 0 {
		return "", false
	}
	rest := payload[start+len(open):]
	end := bytes.Index(rest, []byte("</"+element+">"))
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(string(rest[:end])), true
}

func parseTextValue(payload []byte, element string) string {
	value, _ := lookupTextValue(payload, element)
	return value
}

// parseTransportInfo reads GetTransportInfo. When the state element cannot be
// found the raw body is scanned for the PLAYING marker instead.
func parseTransportInfo(payload []byte) TransportInfo {
	info := TransportInfo{
		CurrentTransportStatus: parseTextValue(payload, "CurrentTransportStatus"),
		CurrentSpeed:           parseTextValue(payload, "CurrentSpeed"),
	}
	if state, ok := lookupTextValue(payload, "CurrentTransportState"); ok {
		info.CurrentTransportState = state
	} else if bytes.Contains(payload, []byte(TransportStatePlaying)) {
		info.CurrentTransportState = TransportStatePlaying
	}
	return info
}

func parseVolume(payload []byte) (VolumeInfo, error) {
	volStr, ok := lookupTextValue(payload, "CurrentVolume")
	if !ok {
		return VolumeInfo{}, ErrMissingElement
	}
	vol, err := strconv.Atoi(volStr)
	if err != nil {
		return VolumeInfo{}, err
	}
	return VolumeInfo{CurrentVolume: vol}, nil
}
