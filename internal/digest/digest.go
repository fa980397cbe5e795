// Package digest renders the daily task digest as a Telegram MarkdownV2
// message. Everything here is pure: inputs in, string out, no clock and no
// network.
package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/antigravity-dev/daybrief/internal/todoist"
)

// User-facing literals. The digest ships in Russian; keep these byte-exact.
const (
	title         = "Главное на сегодня"
	emptyNotice   = "Список пуст. Нет задач с меткой @Главное на сегодня."
	noProjectName = "Без проекта"
	untitledTask  = "(без названия)"
)

// dateLayout renders the header date as day, abbreviated month, year.
const dateLayout = "02 Jan 2006"

// markdownV2Reserved is the full character set Telegram requires escaped in
// MarkdownV2 text.
const markdownV2Reserved = "_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 prefixes every reserved MarkdownV2 character with a
// backslash. Apply it to raw fragments exactly once; escaping assembled
// output would mangle the markup.
func EscapeMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Compose renders the digest for the given local time. Input order does not
// matter: tasks are sorted by (project name, task order, content) so the same
// inputs always produce the same message. The numbered prefix and the italic
// underscores are markup and stay unescaped; every raw fragment is escaped
// individually before assembly.
func Compose(tasks []todoist.Task, index todoist.ProjectIndex, now time.Time) string {
	header := title + "\n" + now.Format(dateLayout) + "\n"

	if len(tasks) == 0 {
		return EscapeMarkdownV2(header) + "\n" + EscapeMarkdownV2(emptyNotice)
	}

	lines := make([]string, 0, 2+3*len(tasks))
	lines = append(lines, EscapeMarkdownV2(header), "")

	for i, t := range sortForDisplay(tasks, index) {
		content := t.Content
		if content == "" {
			content = untitledTask
		}
		project, ok := index.Name(t.ProjectID)
		if !ok {
			project = noProjectName
		}

		lines = append(lines,
			fmt.Sprintf("%d. %s", i+1, EscapeMarkdownV2(content)),
			"_"+EscapeMarkdownV2(project)+"_",
			"",
		)
	}

	return strings.Join(lines, "\n")
}

// sortForDisplay orders tasks by resolved project name, then task order, then
// content. An unresolvable project reference sorts as the empty name, so such
// tasks group first; the render placeholder is applied later, never here.
func sortForDisplay(tasks []todoist.Task, index todoist.ProjectIndex) []todoist.Task {
	ordered := make([]todoist.Task, len(tasks))
	copy(ordered, tasks)

	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		ak, bk := projectSortKey(index, a.ProjectID), projectSortKey(index, b.ProjectID)
		if ak != bk {
			return ak < bk
		}
		if a.Order != b.Order {
			return a.Order < b.Order
		}
		return a.Content < b.Content
	})
	return ordered
}

func projectSortKey(index todoist.ProjectIndex, projectID string) string {
	name, ok := index.Name(projectID)
	if !ok {
		return ""
	}
	return name
}
