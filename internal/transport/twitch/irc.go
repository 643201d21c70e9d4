package twitch

import "strings"

// ircMessage is one parsed IRC line. Twitch tags are kept raw.
type ircMessage struct {
	Tags     string
	Prefix   string
	Command  string
	Params   []string
	Trailing string
}

// Nick returns the sender nick from a "nick!user@host" prefix.
func (m ircMessage) Nick() string {
	nick, _, _ := strings.Cut(m.Prefix, "!")
	return nick
}

func parseLine(line string) (ircMessage, bool) {
	var msg ircMessage
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return msg, false
	}

	if strings.HasPrefix(line, "@") {
		tags, rest, ok := strings.Cut(line[1:], " ")
		if !ok {
			return msg, false
		}
		msg.Tags, line = tags, rest
	}

	if strings.HasPrefix(line, ":") {
		prefix, rest, ok := strings.Cut(line[1:], " ")
		if !ok {
			return msg, false
		}
		msg.Prefix, line = prefix, rest
	}

	head, trailing, hasTrailing := strings.Cut(line, " :")
	if hasTrailing {
		msg.Trailing = trailing
	}

	fields := strings.Fields(head)
	if len(fields) == 0 {
		return msg, false
	}
	msg.Command = strings.ToUpper(fields[0])
	msg.Params = fields[1:]
	return msg, true
}
