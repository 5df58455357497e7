package mail

import (
	"bufio"
	"context"
	"net"
	"net/textproto"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRelay 只实现发信需要的最小 SMTP 对话
type fakeRelay struct {
	ln       net.Listener
	authCode string
	received chan string
	commands chan string
}

func startFakeRelay(t *testing.T, authCode string) *fakeRelay {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	r := &fakeRelay{
		ln:       ln,
		authCode: authCode,
		received: make(chan string, 1),
		commands: make(chan string, 32),
	}
	t.Cleanup(func() { _ = ln.Close() })

	go r.serve()
	return r
}

func (r *fakeRelay) port() int {
	return r.ln.Addr().(*net.TCPAddr).Port
}

func (r *fakeRelay) serve() {
	conn, err := r.ln.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	tp := textproto.NewConn(conn)
	_ = tp.PrintfLine("220 localhost ESMTP fake")

	for {
		line, err := tp.ReadLine()
		if err != nil {
			return
		}
		r.commands <- line
		cmd := strings.ToUpper(strings.SplitN(line, " ", 2)[0])

		switch cmd {
		case "EHLO", "HELO":
			_ = tp.PrintfLine("250-localhost")
			_ = tp.PrintfLine("250 AUTH PLAIN")
		case "AUTH":
			_ = tp.PrintfLine("%s", r.authCode)
		case "MAIL", "RCPT":
			_ = tp.PrintfLine("250 ok")
		case "DATA":
			_ = tp.PrintfLine("354 go ahead")
			data, err := tp.ReadDotLines()
			if err != nil {
				return
			}
			r.received <- strings.Join(data, "\n")
			_ = tp.PrintfLine("250 queued")
		case "QUIT":
			_ = tp.PrintfLine("221 bye")
			return
		default:
			_ = tp.PrintfLine("502 not implemented")
		}
	}
}

func TestSMTPSender_Send(t *testing.T) {
	relay := startFakeRelay(t, "235 2.7.0 accepted")

	sender := NewSMTPSender(Config{
		Host:     "127.0.0.1",
		Port:     relay.port(),
		Username: "hr-bot",
		Password: "secret",
		From:     "HR Bot <hr-bot@example.com>",
		Timeout:  2 * time.Second,
	})

	err := sender.Send(context.Background(), Message{
		ID:      "42",
		To:      "admin@example.com",
		Subject: "Leave Application Submitted",
		Body:    "Name: Asha\nReason: travel",
	})
	require.NoError(t, err)

	select {
	case data := <-relay.received:
		assert.Contains(t, data, "Subject: Leave Application Submitted")
		assert.Contains(t, data, "To: admin@example.com")
		assert.Contains(t, data, "Message-ID: <42@example.com>")
		assert.Contains(t, data, "Reason: travel")
	case <-time.After(2 * time.Second):
		t.Fatal("relay did not receive message")
	}

	var cmds []string
	for len(relay.commands) > 0 {
		cmds = append(cmds, <-relay.commands)
	}
	assert.Contains(t, cmds, "MAIL FROM:<hr-bot@example.com>")
	assert.Contains(t, cmds, "RCPT TO:<admin@example.com>")
}

func TestSMTPSender_AuthRejected(t *testing.T) {
	relay := startFakeRelay(t, "535 5.7.8 bad credentials")

	sender := NewSMTPSender(Config{
		Host:     "127.0.0.1",
		Port:     relay.port(),
		Username: "hr-bot",
		Password: "wrong",
		From:     "hr-bot@example.com",
		Timeout:  2 * time.Second,
	})

	err := sender.Send(context.Background(), Message{To: "admin@example.com", Subject: "s", Body: "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp auth")
}

func TestSMTPSender_RelayUnreachable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())

	sender := NewSMTPSender(Config{Host: "127.0.0.1", Port: port, From: "a@example.com", Timeout: time.Second})
	err = sender.Send(context.Background(), Message{To: "b@example.com"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial smtp 127.0.0.1:"+strconv.Itoa(port))
}

func TestBuildMessage(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	raw := buildMessage("HR <hr@corp.example>", Message{ID: "7", To: "admin@corp.example", Subject: "Hi", Body: "a\nb"}, now)

	sc := bufio.NewScanner(strings.NewReader(raw))
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimRight(sc.Text(), "\r"))
	}
	assert.Contains(t, lines, "From: HR <hr@corp.example>")
	assert.Contains(t, lines, "Message-ID: <7@corp.example>")
	assert.Contains(t, lines, "Content-Type: text/plain; charset=utf-8")
	assert.Equal(t, []string{"a", "b"}, lines[len(lines)-2:])
}

func TestParseAddress(t *testing.T) {
	assert.Equal(t, "hr@corp.example", parseAddress("HR <hr@corp.example>"))
	assert.Equal(t, "hr@corp.example", parseAddress(" hr@corp.example "))
	assert.Equal(t, "localhost", domainOf("nobody"))
}

func TestBuildMessage_CRLFBody(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	raw := buildMessage("hr@corp.example", Message{To: "admin@corp.example", Body: "Reason: travel\r\nback on Monday\nthanks"}, now)

	assert.NotContains(t, raw, "\r\r\n")
	assert.True(t, strings.HasSuffix(raw, "Reason: travel\r\nback on Monday\r\nthanks"))
}
