// Package geo 通过多个外部服务解析 IP 的国家与城市。
package geo

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/clickpulse/internal/constants"
)

const (
	maxCountryNameRunes = 64
	maxCityNameRunes    = 96
)

// Location 地理位置
type Location struct {
	CountryCode string `json:"country_code"`
	CountryName string `json:"country_name"`
	CityName    string `json:"city_name"`
	Source      string `json:"source,omitempty"`
}

// Local 内网/回环地址的哨兵值
var Local = Location{CountryCode: constants.GeoCountryLocal, CountryName: "Localhost"}

// Unknown 无法解析时的哨兵值
var Unknown = Location{CountryCode: constants.GeoCountryUnknown}

// Known 是否为真实解析出的国家
func (l Location) Known() bool {
	switch l.CountryCode {
	case "", constants.GeoCountryLocal, constants.GeoCountryUnknown:
		return false
	default:
		return true
	}
}

var countryCodePattern = regexp.MustCompile(`^[A-Z]{2}$`)

// placeholderCodes 服务商用来表示未知/保留的代码
var placeholderCodes = map[string]struct{}{
	"XX": {}, "ZZ": {}, "AA": {}, "QZ": {}, "EU": {}, "AP": {},
	"T1": {}, "A1": {}, "A2": {}, "O1": {}, "--": {},
}

var placeholderNames = map[string]struct{}{
	"unknown": {}, "n/a": {}, "na": {}, "none": {}, "null": {}, "nil": {}, "-": {}, "?": {},
	"undefined": {}, "not found": {}, "private": {}, "reserved": {}, "localhost": {},
}

// Validate 校验并清洗服务商返回的位置，国家代码非法时返回 false
func Validate(loc Location) (Location, bool) {
	code := strings.ToUpper(strings.TrimSpace(loc.CountryCode))
	if !countryCodePattern.MatchString(code) {
		return Location{}, false
	}
	if _, ok := placeholderCodes[code]; ok {
		return Location{}, false
	}
	return Location{
		CountryCode: code,
		CountryName: SanitizeName(loc.CountryName, maxCountryNameRunes),
		CityName:    SanitizeName(loc.CityName, maxCityNameRunes),
		Source:      loc.Source,
	}, true
}

// SanitizeName 去除控制字符、合并空白并截断，占位文本返回空串
func SanitizeName(raw string, maxRunes int) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range raw {
		switch {
		case r == utf8.RuneError:
			continue
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteRune(' ')
				lastSpace = true
			}
		case unicode.IsControl(r), r == '<', r == '>':
			continue
		default:
			b.WriteRune(r)
			lastSpace = false
		}
	}
	name := strings.TrimSpace(b.String())
	if _, ok := placeholderNames[strings.ToLower(name)]; ok {
		return ""
	}
	if maxRunes > 0 && utf8.RuneCountInString(name) > maxRunes {
		name = strings.TrimSpace(string([]rune(name)[:maxRunes]))
	}
	return name
}
