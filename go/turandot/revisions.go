// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package turandot

import (
	"fmt"
	"regexp"
)

func (r Revision) String() string {
	switch r {
	case R07_Istanbul:
		return "Istanbul"
	case R08_MuirGlacier:
		return "MuirGlacier"
	case R09_Berlin:
		return "Berlin"
	case R10_London:
		return "London"
	case R11_Paris:
		return "Paris"
	case R12_Shanghai:
		return "Shanghai"
	case R13_Cancun:
		return "Cancun"
	case R14_Prague:
		return "Prague"
	default:
		return fmt.Sprintf("Revision(%d)", r)
	}
}

func (r Revision) MarshalJSON() ([]byte, error) {
	revString := r.String()
	reg := regexp.MustCompile(`Revision\([0-9]+\)`)
	if reg.MatchString(revString) {
		return nil, &ErrUnsupportedRevision{r}
	}
	return []byte("\"" + revString + "\""), nil
}

func (r *Revision) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case "\"Istanbul\"":
		*r = R07_Istanbul
	case "\"MuirGlacier\"":
		*r = R08_MuirGlacier
	case "\"Berlin\"":
		*r = R09_Berlin
	case "\"London\"":
		*r = R10_London
	case "\"Paris\"":
		*r = R11_Paris
	case "\"Shanghai\"":
		*r = R12_Shanghai
	case "\"Cancun\"":
		*r = R13_Cancun
	case "\"Prague\"":
		*r = R14_Prague
	default:
		return fmt.Errorf("unknown revision: %s", data)
	}
	return nil
}

// GetAllKnownRevisions returns the list of all revisions known to this
// package, ordered from oldest to newest.
func GetAllKnownRevisions() []Revision {
	res := make([]Revision, 0, numRevisions)
	for i := 0; i < numRevisions; i++ {
		res = append(res, Revision(i))
	}
	return res
}
