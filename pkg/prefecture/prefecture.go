// Package prefecture maps Japanese address strings to prefecture names by
// substring lookup over romaji and kanji spellings.
package prefecture

import "strings"

type entry struct {
	name     string
	patterns []string
}

// Ordered list; the first entry whose pattern appears in the address wins.
var table = []entry{
	{"Hokkaido", []string{"hokkaido", "北海道"}},
	{"Aomori", []string{"aomori", "青森"}},
	{"Iwate", []string{"iwate", "岩手"}},
	{"Miyagi", []string{"miyagi", "宮城"}},
	{"Akita", []string{"akita", "秋田"}},
	{"Yamagata", []string{"yamagata", "山形"}},
	{"Fukushima", []string{"fukushima", "福島"}},
	{"Ibaraki", []string{"ibaraki", "茨城"}},
	{"Tochigi", []string{"tochigi", "栃木"}},
	{"Gunma", []string{"gunma", "群馬"}},
	{"Saitama", []string{"saitama", "埼玉"}},
	{"Chiba", []string{"chiba", "千葉"}},
	{"Tokyo", []string{"tokyo", "東京都", "東京"}},
	{"Kanagawa", []string{"kanagawa", "神奈川"}},
	{"Niigata", []string{"niigata", "新潟"}},
	{"Toyama", []string{"toyama", "富山"}},
	{"Ishikawa", []string{"ishikawa", "石川"}},
	{"Fukui", []string{"fukui", "福井"}},
	{"Yamanashi", []string{"yamanashi", "山梨"}},
	{"Nagano", []string{"nagano", "長野"}},
	{"Gifu", []string{"gifu", "岐阜"}},
	{"Shizuoka", []string{"shizuoka", "静岡"}},
	{"Aichi", []string{"aichi", "愛知"}},
	{"Mie", []string{"mie", "三重"}},
	{"Shiga", []string{"shiga", "滋賀"}},
	{"Kyoto", []string{"kyoto", "京都"}},
	{"Osaka", []string{"osaka", "大阪"}},
	{"Hyogo", []string{"hyogo", "兵庫"}},
	{"Nara", []string{"nara", "奈良"}},
	{"Wakayama", []string{"wakayama", "和歌山"}},
	{"Tottori", []string{"tottori", "鳥取"}},
	{"Shimane", []string{"shimane", "島根"}},
	{"Okayama", []string{"okayama", "岡山"}},
	{"Hiroshima", []string{"hiroshima", "広島"}},
	{"Yamaguchi", []string{"yamaguchi", "山口"}},
	{"Tokushima", []string{"tokushima", "徳島"}},
	{"Kagawa", []string{"kagawa", "香川"}},
	{"Ehime", []string{"ehime", "愛媛"}},
	{"Kochi", []string{"kochi", "高知"}},
	{"Fukuoka", []string{"fukuoka", "福岡"}},
	{"Saga", []string{"saga", "佐賀"}},
	{"Nagasaki", []string{"nagasaki", "長崎"}},
	{"Kumamoto", []string{"kumamoto", "熊本"}},
	{"Oita", []string{"oita", "大分"}},
	{"Miyazaki", []string{"miyazaki", "宮崎"}},
	{"Kagoshima", []string{"kagoshima", "鹿児島"}},
	{"Okinawa", []string{"okinawa", "沖縄"}},
}

// FromAddress returns the prefecture whose romaji or kanji spelling appears in
// the address. Romaji patterns match case-insensitively. Returns ok=false for
// an empty address or when no pattern matches.
func FromAddress(address string) (string, bool) {
	if address == "" {
		return "", false
	}
	lower := strings.ToLower(address)
	for _, e := range table {
		for _, p := range e.patterns {
			if strings.Contains(lower, p) || strings.Contains(address, p) {
				return e.name, true
			}
		}
	}
	return "", false
}
