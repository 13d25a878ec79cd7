package utils

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strictPolicy = bluemonday.StrictPolicy()

// 多层实体编码最多展开的次数
const maxSanitizeRounds = 5

// SanitizeText 去除全部HTML标签并裁剪空白, 用于评论、名称、描述等纯文本字段
// 先解码实体再过滤, 直到结果不再变化, 防止 &lt;img&gt; 这类编码后的标签被还原
func SanitizeText(s string) string {
	if s == "" {
		return ""
	}
	out := s
	for i := 0; i < maxSanitizeRounds; i++ {
		next := html.UnescapeString(strictPolicy.Sanitize(html.UnescapeString(out)))
		if next == out {
			return strings.TrimSpace(out)
		}
		out = next
	}
	// 仍未收敛时保留转义结果
	return strings.TrimSpace(strictPolicy.Sanitize(out))
}

// SanitizeTextPtr 指针版本, nil 原样返回
func SanitizeTextPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := SanitizeText(*s)
	return &v
}
