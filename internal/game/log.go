package game

import "fmt"

// maxLogEntries caps the action log shown to the player.
const maxLogEntries = 20

// Entry is one line of the session's action log.
type Entry struct {
	Turn    int    `json:"turn"`
	Message string `json:"message"`
}

// log prepends an entry: most recent first, capped length.
func (g *Game) log(format string, args ...any) {
	entry := Entry{Turn: g.st.Turn, Message: fmt.Sprintf(format, args...)}
	g.st.Log = append([]Entry{entry}, g.st.Log...)
	if len(g.st.Log) > maxLogEntries {
		g.st.Log = g.st.Log[:maxLogEntries]
	}
}
