package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/atango/internal/config"
	"github.com/kailas-cloud/atango/internal/db"
	"github.com/kailas-cloud/atango/internal/domain/message"
	replyrepo "github.com/kailas-cloud/atango/internal/repository/reply"
	replyuc "github.com/kailas-cloud/atango/internal/usecase/reply"
)

type mockResponder struct {
	respondFn func(ctx context.Context, utterance string) (replyuc.Response, error)
}

func (m *mockResponder) Respond(ctx context.Context, utterance string) (replyuc.Response, error) {
	return m.respondFn(ctx, utterance)
}

type mockIndexManager struct {
	exists    bool
	existsErr error
	createErr error
	dropErr   error
	created   []string
	dropped   []string
}

func (m *mockIndexManager) CreateIndex(_ context.Context, def *db.IndexDefinition) error {
	m.created = append(m.created, def.Name)
	return m.createErr
}

func (m *mockIndexManager) DropIndex(_ context.Context, name string) error {
	m.dropped = append(m.dropped, name)
	return m.dropErr
}

func (m *mockIndexManager) IndexExists(context.Context, string) (bool, error) {
	return m.exists, m.existsErr
}

type mockHashWriter struct {
	items   []db.HashSetItem
	deleted []string
	err     error
}

func (m *mockHashWriter) Del(_ context.Context, keys ...string) error {
	m.deleted = append(m.deleted, keys...)
	return nil
}

func (m *mockHashWriter) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	m.items = append(m.items, items...)
	return m.err
}

func TestRunAsk(t *testing.T) {
	tests := []struct {
		name string
		resp replyuc.Response
		want string
	}{
		{"text", replyuc.Response{Message: message.Text("にゃー"), Branch: replyuc.BranchSearch}, "search\tにゃー\n"},
		{"image", replyuc.Response{Message: message.Image("https://x/cat.jpg", "https://x/cat.jpg"), Branch: "image"},
			"image\thttps://x/cat.jpg\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotUtterance string
			r := &mockResponder{respondFn: func(_ context.Context, u string) (replyuc.Response, error) {
				gotUtterance = u
				return tt.resp, nil
			}}

			var out bytes.Buffer
			if err := runAsk(context.Background(), r, "猫 かわいい", &out); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if gotUtterance != "猫 かわいい" {
				t.Errorf("unexpected utterance %q", gotUtterance)
			}
			if out.String() != tt.want {
				t.Errorf("got %q, want %q", out.String(), tt.want)
			}
		})
	}
}

func TestRunAsk_Error(t *testing.T) {
	r := &mockResponder{respondFn: func(context.Context, string) (replyuc.Response, error) {
		return replyuc.Response{}, errors.New("search down")
	}}
	if err := runAsk(context.Background(), r, "猫", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error")
	}
}

func TestRunIndexCreate(t *testing.T) {
	def, err := replyrepo.IndexDefinition("sw_replies", "")
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name        string
		im          *mockIndexManager
		recreate    bool
		wantErr     bool
		wantDropped int
		wantCreated int
		wantOut     string
	}{
		{
			name:        "created",
			im:          &mockIndexManager{},
			wantCreated: 1,
			wantOut:     "created index sw_replies\n",
		},
		{
			name:    "existing index is kept without --recreate",
			im:      &mockIndexManager{exists: true},
			wantOut: "index sw_replies already exists (use --recreate to rebuild it)\n",
		},
		{
			name:        "recreate drops then creates",
			im:          &mockIndexManager{exists: true},
			recreate:    true,
			wantDropped: 1,
			wantCreated: 1,
			wantOut:     "dropped index sw_replies\ncreated index sw_replies\n",
		},
		{
			name:        "recreate on missing index only creates",
			im:          &mockIndexManager{},
			recreate:    true,
			wantCreated: 1,
			wantOut:     "created index sw_replies\n",
		},
		{
			name:        "created concurrently is not an error",
			im:          &mockIndexManager{createErr: db.ErrIndexExists},
			wantCreated: 1,
			wantOut:     "index sw_replies already exists\n",
		},
		{
			name:    "inspect failure",
			im:      &mockIndexManager{existsErr: errors.New("NOAUTH")},
			wantErr: true,
		},
		{
			name:        "create failure",
			im:          &mockIndexManager{createErr: errors.New("READONLY")},
			wantErr:     true,
			wantCreated: 1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			err := runIndexCreate(context.Background(), tt.im, def, tt.recreate, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(tt.im.dropped) != tt.wantDropped || len(tt.im.created) != tt.wantCreated {
				t.Errorf("dropped=%v created=%v", tt.im.dropped, tt.im.created)
			}
			if !tt.wantErr && out.String() != tt.wantOut {
				t.Errorf("output %q, want %q", out.String(), tt.wantOut)
			}
		})
	}
}

func TestRunIndexDrop(t *testing.T) {
	var out bytes.Buffer
	if err := runIndexDrop(context.Background(), &mockIndexManager{dropErr: db.ErrIndexNotFound}, "sw_replies", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "index sw_replies does not exist\n" {
		t.Errorf("unexpected output %q", out.String())
	}

	out.Reset()
	if err := runIndexDrop(context.Background(), &mockIndexManager{}, "sw_replies", &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.String() != "dropped index sw_replies\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunSeed(t *testing.T) {
	in := strings.NewReader(`{"id":"1","q1":"猫","text":"にゃー","quoted_by":["a"]}
{"id":"2","q1":"犬","text":"わん","quoted_by":3}
`)
	w := &mockHashWriter{}
	var out bytes.Buffer
	if err := runSeed(context.Background(), w, seedTarget{index: "sw_replies"}, in, &out); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.items) != 2 || w.items[0].Key != "reply:sw_replies:1" {
		t.Fatalf("unexpected items %+v", w.items)
	}
	if len(w.deleted) != 0 {
		t.Errorf("nothing is deleted without --replace, got %v", w.deleted)
	}
	if out.String() != "seeded 2 records into sw_replies\n" {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestRunSeed_Replace(t *testing.T) {
	in := strings.NewReader(`{"id":"1","q1":"猫","text":"にゃー"}`)
	w := &mockHashWriter{}
	if err := runSeed(context.Background(), w, seedTarget{index: "sw_replies", replace: true}, in, &bytes.Buffer{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(w.deleted) != 1 || w.deleted[0] != "reply:sw_replies:1" {
		t.Errorf("expected the seeded key to be deleted first, got %v", w.deleted)
	}
}

func TestRunSeed_InvalidRecord(t *testing.T) {
	in := strings.NewReader(`{"id":"1","q1":"","text":"にゃー"}`)
	if err := runSeed(context.Background(), &mockHashWriter{}, seedTarget{index: "sw_replies"}, in, &bytes.Buffer{}); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestRedisStore_RejectsOtherDrivers(t *testing.T) {
	_, err := redisStore(config.SearchConfig{Driver: config.DriverElasticsearch, Addrs: []string{"es:9200"}})
	if err == nil || !strings.Contains(err.Error(), "requires") {
		t.Fatalf("expected driver error, got %v", err)
	}
}

func TestVersionCmd(t *testing.T) {
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"version"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasPrefix(out.String(), "atango dev") {
		t.Errorf("unexpected output %q", out.String())
	}
}

func TestAskCmd_RequiresUtterance(t *testing.T) {
	cmd := newRootCmd()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs([]string{"ask"})

	if err := cmd.Execute(); err == nil {
		t.Fatal("expected argument error")
	}
}
