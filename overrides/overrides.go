// Package overrides holds hand-authored lyrics that are served without
// touching any upstream, plus the normalization used to match them.
package overrides

import (
	"net/url"
	"strings"
)

// Normalize lower-cases s and drops every character outside [a-z0-9].
func Normalize(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

type entry struct {
	match func(artist, track, rawTrack string) bool
	lines []string
}

var table = []entry{
	{
		// IU - 너랑 나 (You & I). The Hangul title normalizes to "", so the
		// raw query value is checked as well.
		match: func(artist, track, rawTrack string) bool {
			if artist != "iu" {
				return false
			}
			if strings.Contains(track, "youi") || strings.Contains(track, "youandi") {
				return true
			}
			decoded, err := url.QueryUnescape(rawTrack)
			if err != nil {
				decoded = rawTrack
			}
			return strings.Contains(decoded, "너랑 나")
		},
		lines: youAndI,
	},
}

// Lookup returns the override lines for an already normalized artist and
// track. rawTrack is the track exactly as the caller received it.
func Lookup(normalizedArtist, normalizedTrack, rawTrack string) ([]string, bool) {
	for _, e := range table {
		if e.match(normalizedArtist, normalizedTrack, rawTrack) {
			lines := make([]string, len(e.lines))
			copy(lines, e.lines)
			return lines, true
		}
	}
	return nil, false
}

var youAndI = []string{
	"시곌 보며 속삭이는 비밀들",
	"간절한 내 맘속 이야기",
	"지금 내 모습을 해쳐도 좋아",
	"나를 재촉하면 할수록 좋아",
	"내 이름 불러줘",
	"손 틈새로 비치는 내 맘 들킬까 두려워",
	"가슴이 막 벅차 서러워",
	"조금만 꼭 참고 날 기다려줘",
	"너랑 나랑은 지금 안되지",
	"시계를 더 보채고 싶지만",
	"네가 있던 미래에서 내 이름을 불러줘",
	"내가 먼저 엿보고 온 시간들",
	"너와 내가 함께였었지",
	"나랑 놀아주는 그대가 좋아",
	"내가 물어보면 그대도 좋아",
	"내 이름이 뭐야",
	"손 틈새로 비치는 내 맘 들킬까 두려워",
	"가슴이 막 벅차 서러워",
	"조금만 꼭 참고 날 기다려줘",
	"너랑 나랑은 지금 안되지",
	"시계를 더 보채고 싶지만",
	"네가 있던 미래에서 내 이름을 불러줘",
	"눈 깜박하면 어른이 될 거에요",
	"날 알아보겠죠 그댄 기억하겠죠",
	"그래 기묘했던 아이",
	"손 틈새로 비치는 네 모습 참 좋다",
	"손끝으로 돌리며 시곗바늘아 달려봐",
	"조금만 더 빨리 날아봐",
	"두 눈을 꼭 감고 마법을 건다",
	"너랑 나랑은 조금 남았지",
	"몇 날 몇실진 모르겠지만",
	"네가 있을 미래에서 혹시 내가 헤맨다면",
	"너를 알아볼 수 있게 내 이름을 불러줘",
}
