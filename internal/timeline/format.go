package timeline

import (
	"fmt"
	"time"
)

// FormatDate は日付を「10月15日」の形式で返す。
func FormatDate(t time.Time, loc *time.Location) string {
	lt := t.In(loc)
	return fmt.Sprintf("%d月%d日", int(lt.Month()), lt.Day())
}

// FormatTime は時刻を「09:05」の形式（24時間表記・ゼロ埋め）で返す。
func FormatTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("15:04")
}
