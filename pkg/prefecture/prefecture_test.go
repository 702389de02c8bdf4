package prefecture

import "testing"

func TestFromAddress(t *testing.T) {
	cases := []struct {
		name    string
		address string
		want    string
		ok      bool
	}{
		{"romaji", "4-2-8 Shibakoen, Minato City, Tokyo 105-0011, Japan", "Tokyo", true},
		{"romaji case-insensitive", "SAPPORO, HOKKAIDO", "Hokkaido", true},
		{"kanji long form", "〒105-0011 東京都港区芝公園４丁目２−８", "Tokyo", true},
		{"kanji short form", "日本、東京 港区", "Tokyo", true},
		{"kanji osaka", "〒530-0047 大阪府大阪市北区西天満", "Osaka", true},
		{"kyoto", "Fushimi Ward, Kyoto, 612-0882, Japan", "Kyoto", true},
		{"okinawa", "字下地, Miyakojima, Okinawa 906-0305", "Okinawa", true},
		{"list order wins over address order", "somewhere between Kanagawa and Tokyo", "Tokyo", true},
		{"empty address", "", "", false},
		{"no match", "1600 Pennsylvania Avenue NW, Washington, DC", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := FromAddress(tc.address)
			if ok != tc.ok || got != tc.want {
				t.Fatalf("FromAddress(%q) = (%q, %v); want (%q, %v)", tc.address, got, ok, tc.want, tc.ok)
			}
		})
	}
}
