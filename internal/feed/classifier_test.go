package feed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSponsored(t *testing.T) {
	assert.True(t, IsSponsored("Acme Corp\nPromoted\nBuy our widgets"))
	assert.True(t, IsSponsored("This post is SPONSORED content"))
	assert.False(t, IsSponsored("Jane Doe\n2d\nExcited to share my new role"))
	assert.False(t, IsSponsored(""))
}

func TestIsVietnameseByDiacritics(t *testing.T) {
	// three diacritic characters trip the threshold
	assert.True(t, IsVietnamese("Hôm nay trời đẹp"))
	// two diacritics and no function-word pair is not enough
	assert.False(t, IsVietnamese("café olé"))
	assert.False(t, IsVietnamese("Plain English text about Go"))
}

func TestIsVietnameseByFunctionWords(t *testing.T) {
	assert.True(t, IsVietnamese("cong ty và doanh is hiring"))
	// a single match does not qualify
	assert.False(t, IsVietnamese("the ty cobb story"))
}

func TestClassifyPriority(t *testing.T) {
	// sponsored wins even when the text is Vietnamese
	text := "Được tài trợ\nPromoted\nChúng tôi đang tuyển dụng"
	assert.Equal(t, CategorySponsored, Classify(text))

	assert.Equal(t, CategoryVietnamese, Classify("Chúng tôi đang tuyển dụng các bạn"))
	assert.Equal(t, CategoryNormal, Classify("Thrilled to announce our funding round"))
}

func TestClassifyIdempotent(t *testing.T) {
	texts := []string{
		"Promoted\nAd copy here",
		"Xin chào các bạn của tôi",
		"Regular English post",
	}
	for _, text := range texts {
		first := Classify(text)
		assert.Equal(t, first, Classify(text))
	}
}

func TestTooOld(t *testing.T) {
	assert.True(t, TooOld("2 weeks ago", 7))
	assert.True(t, TooOld("1 month ago", 7))
	assert.True(t, TooOld("1 year ago", 365))
	assert.True(t, TooOld("10 days ago", 7))
	assert.False(t, TooOld("3 days ago", 7))
	assert.False(t, TooOld("7 days ago", 7))
	assert.False(t, TooOld("5h", 7))
	assert.False(t, TooOld("", 7))
	assert.False(t, TooOld("Just now", 7))
}
