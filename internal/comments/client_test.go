package comments_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/piyushdaiya/dotescrow-kit/internal/comments"
	"github.com/piyushdaiya/dotescrow-kit/internal/core"
	"github.com/stretchr/testify/require"
)

const (
	clientAddr = "5GrwvaEF5zXb26Fz9rcQpDWS57CtERHpNehXCPcNoHGKutQY"
	workerAddr = "5FHneW46xGXgs5mUiveU4sbTyGBzmstUspZC92UhjJM694ty"
)

// fakeService mimics the comment REST API.
type fakeService struct {
	mu      sync.Mutex
	convs   []comments.Conversation
	nextID  int
	gets    int
	methods []string
	failGet int
}

func (f *fakeService) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /comment", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.gets++
		f.methods = append(f.methods, r.Method)
		if f.failGet > 0 {
			f.failGet--
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		out := []comments.Conversation{}
		for _, c := range f.convs {
			if c.EscrowID == r.URL.Query().Get("escrowId") && c.MilestoneID == r.URL.Query().Get("milestoneId") {
				out = append(out, c)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	})
	mux.HandleFunc("POST /comment", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.methods = append(f.methods, r.Method)
		var c comments.Conversation
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		f.nextID++
		c.ID = fmt.Sprintf("conv-%d", f.nextID)
		f.convs = append(f.convs, c)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(c)
	})
	mux.HandleFunc("PUT /comment/{id}", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.methods = append(f.methods, r.Method)
		var c comments.Conversation
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for i := range f.convs {
			if f.convs[i].ID == r.PathValue("id") {
				f.convs[i] = c
				_ = json.NewEncoder(w).Encode(c)
				return
			}
		}
		http.NotFound(w, r)
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeService) *comments.Client {
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	clock := time.UnixMilli(1_700_000_000_000)
	return comments.NewClient(srv.URL+"/", 5*time.Second, comments.WithClock(func() time.Time { return clock }))
}

func TestAddCommentCreatesThenAppends(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := &fakeService{}
	client := newTestClient(t, f)

	first, err := client.AddComment(ctx, comments.NewComment{
		EscrowID: "7", MilestoneID: "1", Content: "evidence uploaded",
		AuthorAddress: workerAddr, AuthorRole: core.RoleWorker,
	})
	require.NoError(err)
	require.Equal("conv-1", first.ConversationID)
	require.Equal("conv-1-msg-1700000000000", first.ID)

	_, err = client.AddComment(ctx, comments.NewComment{
		EscrowID: "7", MilestoneID: "1", Content: "looks good",
		AuthorAddress: "  " + clientAddr, AuthorRole: core.RoleClient,
	})
	require.NoError(err)
	require.Equal([]string{"GET", "POST", "GET", "PUT"}, f.methods)

	list, err := client.Comments(ctx, "7", "1")
	require.NoError(err)
	require.Len(list, 2)
	require.Equal("evidence uploaded", list[0].Content)
	require.Equal(core.RoleWorker, list[0].AuthorRole)
	require.Equal(clientAddr, list[1].AuthorAddress)
	require.Equal("conv-1", list[1].ConversationID)
	require.Equal(int64(1_700_000_000_000), list[1].Timestamp.UnixMilli())

	// other milestones stay separate
	list, err = client.Comments(ctx, "7", "2")
	require.NoError(err)
	require.Empty(list)
}

func TestAddCommentRejectsBadInput(t *testing.T) {
	require := require.New(t)
	ctx := context.Background()
	f := &fakeService{}
	client := newTestClient(t, f)

	_, err := client.AddComment(ctx, comments.NewComment{EscrowID: "1", Content: "   ", AuthorAddress: clientAddr, AuthorRole: core.RoleClient})
	require.ErrorIs(err, comments.ErrEmptyComment)

	_, err = client.AddComment(ctx, comments.NewComment{EscrowID: "1", Content: "hi", AuthorAddress: clientAddr, AuthorRole: "admin"})
	require.ErrorIs(err, comments.ErrInvalidRole)

	_, err = client.AddComment(ctx, comments.NewComment{EscrowID: "1", Content: "hi", AuthorAddress: "0xabc", AuthorRole: core.RoleNone})
	require.ErrorIs(err, comments.ErrInvalidAuthor)
	require.ErrorContains(err, "Invalid characters in address")

	_, err = client.AddComment(ctx, comments.NewComment{Content: "hi", AuthorAddress: clientAddr, AuthorRole: core.RoleNone})
	require.ErrorIs(err, comments.ErrMissingEscrow)

	require.Empty(f.methods)
}

func TestGetConversationErrors(t *testing.T) {
	require := require.New(t)
	f := &fakeService{failGet: 1}
	client := newTestClient(t, f)

	_, err := client.Comments(context.Background(), "1", "")
	var httpErr *comments.HTTPError
	require.ErrorAs(err, &httpErr)
	require.Equal(http.StatusBadGateway, httpErr.StatusCode)
	require.Equal("upstream down", httpErr.Body)

	// a failed lookup must not create a duplicate conversation
	f.failGet = 1
	_, err = client.AddComment(context.Background(), comments.NewComment{
		EscrowID: "1", Content: "hi", AuthorAddress: clientAddr, AuthorRole: core.RoleClient,
	})
	require.Error(err)
	require.Empty(f.convs)
}

func TestGetConversationNotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	conv, err := comments.NewClient(srv.URL, time.Second).GetConversation(context.Background(), "1", "2")
	require.NoError(t, err)
	require.Nil(t, conv)
}

func TestPoll(t *testing.T) {
	require := require.New(t)
	f := &fakeService{failGet: 1}
	f.convs = []comments.Conversation{{
		ID: "conv-9", EscrowID: "3", MilestoneID: "0",
		Messages: []comments.Message{{Message: "hello", SenderAddress: clientAddr, Role: core.RoleClient, TimeStamp: 1}},
	}}
	client := newTestClient(t, f)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan []comments.Comment, 1)
	done := make(chan error, 1)
	go func() {
		done <- client.Poll(ctx, "3", "0", 10*time.Millisecond, func(list []comments.Comment) {
			select {
			case got <- list:
			default:
			}
		})
	}()

	select {
	case list := <-got:
		require.Len(list, 1)
		require.Equal("hello", list[0].Content)
	case <-time.After(5 * time.Second):
		t.Fatal("poll never delivered comments")
	}
	cancel()
	require.ErrorIs(<-done, context.Canceled)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.GreaterOrEqual(f.gets, 2)
}
