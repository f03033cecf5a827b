package subtitles

import "sync"

var (
	defaultPinyinOnce sync.Once
	defaultPinyinGen  *Pinyin
)

func defaultPinyin() PinyinGenerator {
	defaultPinyinOnce.Do(func() {
		defaultPinyinGen = NewPinyin()
	})
	return defaultPinyinGen
}
