package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leaseguard/leaseguard/internal/domain"
)

func TestParseAddress_SeoulFullSpelling(t *testing.T) {
	parsed, err := ParseAddress("서울특별시 강남구 역삼동 123-45")

	require.NoError(t, err)
	assert.Equal(t, "11", parsed.CityCode)
	assert.Equal(t, "서울특별시", parsed.CityName)
	assert.Equal(t, "강남구", parsed.District)
	assert.Equal(t, "역삼동", parsed.Neighborhood)
}

func TestParseAddress_ShortSpelling(t *testing.T) {
	parsed, err := ParseAddress("서울 마포구 합정동")

	require.NoError(t, err)
	assert.Equal(t, "11", parsed.CityCode)
	assert.Equal(t, "서울", parsed.CityName)
	assert.Equal(t, "마포구", parsed.District)
	assert.Equal(t, "합정동", parsed.Neighborhood)
}

func TestParseAddress_LongerSpellingWins(t *testing.T) {
	// "서울특별시" contains "서울"; the full spelling must be the one
	// consumed so the remainder starts after "특별시".
	parsed, err := ParseAddress("서울특별시 종로구 청운동")

	require.NoError(t, err)
	assert.Equal(t, "서울특별시", parsed.CityName)
	assert.Equal(t, "종로구", parsed.District)
}

func TestParseAddress_Province(t *testing.T) {
	parsed, err := ParseAddress("경기도 성남시 분당구 정자동 178-1")

	require.NoError(t, err)
	assert.Equal(t, "41", parsed.CityCode)
	assert.Equal(t, "성남시", parsed.District)
	assert.Equal(t, "정자동", parsed.Neighborhood)
}

func TestParseAddress_NoCity(t *testing.T) {
	_, err := ParseAddress("somewhere 123 main street")

	require.Error(t, err)
	assert.Equal(t, domain.ErrorTypeValidation, domain.TypeOf(err))
	assert.Contains(t, err.Error(), "no recognized city")
}

func TestParseAddress_MissingDistrictAndNeighborhood(t *testing.T) {
	parsed, err := ParseAddress("부산광역시")

	require.NoError(t, err)
	assert.Equal(t, "26", parsed.CityCode)
	assert.Empty(t, parsed.District)
	assert.Empty(t, parsed.Neighborhood)
}

func TestParseAddress_RenamedProvinceAliases(t *testing.T) {
	cases := []struct {
		address string
		code    string
	}{
		{"전북특별자치도 전주시 완산구", "52"},
		{"전라북도 전주시", "52"},
		{"강원특별자치도 춘천시", "51"},
		{"강원도 춘천시", "51"},
	}
	for _, tc := range cases {
		parsed, err := ParseAddress(tc.address)
		require.NoError(t, err, tc.address)
		assert.Equal(t, tc.code, parsed.CityCode, tc.address)
	}
}
