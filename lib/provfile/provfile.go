// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package provfile reads the license entitlement ID (LEID) from an
// Adobe provisioning file (prov.xml).
//
// A prov.xml produced by Creative Cloud Packager looks like:
//
//	<Provisioning version="1.0">
//	  <EnigmaData type="Volume" leid="V7{}CreativeCloudEnt-1.0-Mac-GM">
//	    ...
//	  </EnigmaData>
//	</Provisioning>
//
// The LEID is the value of /Provisioning/EnigmaData/@leid. It is the
// only value read from the file; the file itself is handed to
// adobe_prtk unchanged.
package provfile

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrNoLEID is returned when the document has no non-empty leid
// attribute at /Provisioning/EnigmaData.
var ErrNoLEID = errors.New("no leid attribute at /Provisioning/EnigmaData")

type provisioning struct {
	XMLName    xml.Name     `xml:"Provisioning"`
	EnigmaData []enigmaData `xml:"EnigmaData"`
}

type enigmaData struct {
	LEID string `xml:"leid,attr"`
}

// ReadLEID opens path and returns its LEID.
func ReadLEID(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening provisioning file: %w", err)
	}
	defer file.Close()

	leid, err := ParseLEID(file)
	if err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return leid, nil
}

// ParseLEID decodes a provisioning document and returns the leid
// attribute of the first EnigmaData element. Surrounding whitespace is
// trimmed; an empty value is ErrNoLEID.
func ParseLEID(reader io.Reader) (string, error) {
	var document provisioning
	if err := xml.NewDecoder(reader).Decode(&document); err != nil {
		return "", fmt.Errorf("parsing provisioning XML: %w", err)
	}
	if len(document.EnigmaData) == 0 {
		return "", ErrNoLEID
	}

	leid := strings.TrimSpace(document.EnigmaData[0].LEID)
	if leid == "" {
		return "", ErrNoLEID
	}
	return leid, nil
}
