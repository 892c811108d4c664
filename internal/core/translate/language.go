package translate

import (
	"strings"

	"smartchef/internal/pkg/common"
)

// Language 顯示語言，封閉集合
type Language string

const (
	LanguageEnglish Language = "english" // 原文語言
	LanguageTelugu  Language = "telugu"
	LanguageHindi   Language = "hindi"
)

// languageCodes 對應翻譯服務的語言代碼
var languageCodes = map[Language]string{
	LanguageEnglish: "en",
	LanguageTelugu:  "te",
	LanguageHindi:   "hi",
}

// Code 回傳翻譯服務使用的語言代碼
func (l Language) Code() string {
	if code, ok := languageCodes[l]; ok {
		return code
	}
	return "en"
}

// IsSource 是否為原文語言（免翻譯的快路徑）
func (l Language) IsSource() bool {
	return l == LanguageEnglish
}

// ParseLanguage 解析語言名稱或代碼
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "english", "en", "":
		return LanguageEnglish, nil
	case "telugu", "te":
		return LanguageTelugu, nil
	case "hindi", "hi":
		return LanguageHindi, nil
	}
	return "", common.ErrUnknownLanguage
}
