// Package registry verifies broker license registrations against the vworld
// government portal, resolving free-text addresses to administrative codes.
package registry

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/leaseguard/leaseguard/internal/domain"
)

// cityEntry maps one recognized city/province spelling to its administrative
// code prefix.
type cityEntry struct {
	Name string
	Code string
}

// cityCodes is the fixed city-name table. Longer spellings come first so that
// "서울특별시" matches before the bare "서울"; lookup order is significant and
// must stay deterministic.
var cityCodes = []cityEntry{
	{"서울특별시", "11"}, {"서울시", "11"}, {"서울", "11"},
	{"부산광역시", "26"}, {"부산시", "26"}, {"부산", "26"},
	{"대구광역시", "27"}, {"대구시", "27"}, {"대구", "27"},
	{"인천광역시", "28"}, {"인천시", "28"}, {"인천", "28"},
	{"광주광역시", "29"}, {"광주시", "29"}, {"광주", "29"},
	{"대전광역시", "30"}, {"대전시", "30"}, {"대전", "30"},
	{"울산광역시", "31"}, {"울산시", "31"}, {"울산", "31"},
	{"세종특별자치시", "36"}, {"세종시", "36"}, {"세종", "36"},
	{"경기도", "41"},
	{"충청북도", "43"}, {"충북", "43"},
	{"충청남도", "44"}, {"충남", "44"},
	{"전라남도", "46"}, {"전남", "46"},
	{"경상북도", "47"}, {"경북", "47"},
	{"경상남도", "48"}, {"경남", "48"},
	{"제주특별자치도", "50"}, {"제주도", "50"}, {"제주", "50"},
	{"강원특별자치도", "51"}, {"강원도", "51"}, {"강원", "51"},
	{"전북특별자치도", "52"}, {"전라북도", "52"}, {"전북", "52"},
}

var (
	districtRe     = regexp.MustCompile(`(\S+구|\S+군|\S+시)`)
	neighborhoodRe = regexp.MustCompile(`(\S+동|\S+읍|\S+면)`)
)

// ParsedAddress is the result of splitting a free-text address into its
// administrative components.
type ParsedAddress struct {
	CityCode     string
	CityName     string
	District     string // 구/군/시, empty if absent
	Neighborhood string // 동/읍/면, empty if absent
}

// ParseAddress extracts the city, district and neighborhood tokens from a
// free-text address. The city is matched against the fixed table; district
// and neighborhood are regex-extracted from the remainder after the city.
func ParseAddress(address string) (ParsedAddress, error) {
	var parsed ParsedAddress

	for _, entry := range cityCodes {
		if strings.Contains(address, entry.Name) {
			parsed.CityCode = entry.Code
			parsed.CityName = entry.Name
			break
		}
	}
	if parsed.CityCode == "" {
		return ParsedAddress{}, domain.ValidationError(
			fmt.Sprintf("no recognized city or province in address: %s", address), nil)
	}

	cityIdx := strings.Index(address, parsed.CityName)
	afterCity := strings.TrimSpace(address[cityIdx+len(parsed.CityName):])

	if m := districtRe.FindStringSubmatch(afterCity); m != nil {
		parsed.District = m[1]
	}
	if m := neighborhoodRe.FindStringSubmatch(afterCity); m != nil {
		parsed.Neighborhood = m[1]
	}

	return parsed, nil
}
