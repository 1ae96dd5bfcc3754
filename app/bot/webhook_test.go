package bot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"vidqueue/app/cache"
	"vidqueue/app/database"
	"vidqueue/app/matcher"
	"vidqueue/app/parser"
	"vidqueue/app/resolver"
	"vidqueue/app/search"
	"vidqueue/app/tasks"
	"vidqueue/app/videos"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[int64]database.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[int64]database.User)}
}

func (r *fakeUserRepo) UpsertUser(user database.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUser(id int64) (*database.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if user, ok := r.users[id]; ok {
		return &user, nil
	}
	return nil, nil
}

func (r *fakeUserRepo) GetUserCount() (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.users), nil
}

type fakeVideoRepo struct {
	videos map[string]database.Video
	nextID int
}

func newFakeVideoRepo() *fakeVideoRepo {
	return &fakeVideoRepo{videos: make(map[string]database.Video)}
}

func (r *fakeVideoRepo) InsertVideo(video database.Video) (*database.Video, error) {
	r.nextID++
	video.ID = fmt.Sprintf("video-%d", r.nextID)
	r.videos[video.ID] = video
	return &video, nil
}

func (r *fakeVideoRepo) GetVideo(id string) (*database.Video, error) {
	if video, ok := r.videos[id]; ok {
		return &video, nil
	}
	return nil, nil
}

func (r *fakeVideoRepo) GetVideoByExternalID(userID int64, platform, externalID string) (*database.Video, error) {
	for _, video := range r.videos {
		if video.UserID == userID && video.Platform == platform && video.ExternalID == externalID {
			return &video, nil
		}
	}
	return nil, nil
}

func (r *fakeVideoRepo) GetVideosByUser(userID int64) ([]database.Video, error) {
	var out []database.Video
	for _, video := range r.videos {
		if video.UserID == userID {
			out = append(out, video)
		}
	}
	return out, nil
}

func (r *fakeVideoRepo) SetWatched(id string, watched bool) (*database.Video, error) {
	video, ok := r.videos[id]
	if !ok {
		return nil, nil
	}
	video.IsWatched = watched
	r.videos[id] = video
	return &video, nil
}

func (r *fakeVideoRepo) DeleteVideo(id string) (bool, error) {
	if _, ok := r.videos[id]; !ok {
		return false, nil
	}
	delete(r.videos, id)
	return true, nil
}

func (r *fakeVideoRepo) VideoExists(id string) (bool, error) {
	_, ok := r.videos[id]
	return ok, nil
}

func (r *fakeVideoRepo) GetVideoCount() (int, error) {
	return len(r.videos), nil
}

type fakeProgressRepo struct{}

func (fakeProgressRepo) GetProgress(int64, string) (*database.Progress, error) { return nil, nil }
func (fakeProgressRepo) UpsertProgress(int64, string, int) error               { return nil }

type noopScheduler struct{}

func (noopScheduler) Start()                                {}
func (noopScheduler) Stop()                                 {}
func (noopScheduler) EnqueueTask(tasks.TaskInterface) error { return nil }

type webhookFixture struct {
	handler  *Handler
	userRepo *fakeUserRepo
	sent     *[]string
}

func newWebhookFixture(t *testing.T) *webhookFixture {
	t.Helper()

	metaServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"title":"Epic Adventure","author_name":"Tech Channel"}`)
	}))
	t.Cleanup(metaServer.Close)

	sent := &[]string{}
	botAPI := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Text string `json:"text"`
		}
		json.NewDecoder(r.Body).Decode(&payload)
		*sent = append(*sent, payload.Text)
		fmt.Fprint(w, `{"ok":true}`)
	}))
	t.Cleanup(botAPI.Close)

	client := &http.Client{Timeout: 5 * time.Second}
	endpoints := resolver.Endpoints{
		YouTubeOEmbed: metaServer.URL + "/oembed",
		MirrorHosts:   []string{metaServer.URL},
		RutubeAPI:     metaServer.URL + "/api/video",
		RutubeOEmbed:  metaServer.URL + "/api/oembed/",
		VKAPI:         metaServer.URL + "/method/video.get",
		VKPage:        metaServer.URL + "/video",
	}

	videoRepo := newFakeVideoRepo()
	userRepo := newFakeUserRepo()

	service := videos.NewService(
		parser.NewParser(),
		resolver.NewResolverWithEndpoints(client, cache.NewMemoryCache(16), "test-agent", "", endpoints),
		search.NewSearcher(client, metaServer.URL, "test-agent"),
		matcher.DefaultConfig(),
		noopScheduler{},
		videoRepo,
		fakeProgressRepo{},
	)

	botClient := NewClientWithAPIURL(client, "test-token", botAPI.URL+"/bot")
	return &webhookFixture{
		handler:  NewHandler(botClient, service, userRepo),
		userRepo: userRepo,
		sent:     sent,
	}
}

func postUpdate(t *testing.T, handler *Handler, update Update) *httptest.ResponseRecorder {
	t.Helper()

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", handler.HandleWebhook)

	body, err := json.Marshal(update)
	if err != nil {
		t.Fatalf("Failed to marshal update: %v", err)
	}

	req := httptest.NewRequest("POST", "/webhook", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func textUpdate(text string) Update {
	return Update{
		UpdateID: 1,
		Message: &Message{
			MessageID: 10,
			From:      &TelegramUser{ID: 7, Username: "alice", FirstName: "Alice"},
			Chat:      Chat{ID: 7},
			Text:      text,
		},
	}
}

func lastReply(f *webhookFixture) string {
	if len(*f.sent) == 0 {
		return ""
	}
	return (*f.sent)[len(*f.sent)-1]
}

func TestHandleWebhook_StartCommand(t *testing.T) {
	f := newWebhookFixture(t)

	w := postUpdate(t, f.handler, textUpdate("/start"))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if lastReply(f) != welcomeText {
		t.Errorf("Expected the welcome text, got %q", lastReply(f))
	}

	if user, _ := f.userRepo.GetUser(7); user == nil || user.Username != "alice" {
		t.Errorf("Expected the sender to be upserted, got %+v", user)
	}
}

func TestHandleWebhook_VideoLink(t *testing.T) {
	f := newWebhookFixture(t)

	w := postUpdate(t, f.handler, textUpdate("https://youtu.be/dQw4w9WgXcQ"))
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200, got %d", w.Code)
	}
	if !strings.Contains(lastReply(f), "Added") || !strings.Contains(lastReply(f), "Epic Adventure") {
		t.Errorf("Expected an added confirmation with the title, got %q", lastReply(f))
	}
}

func TestHandleWebhook_DuplicateLink(t *testing.T) {
	f := newWebhookFixture(t)

	postUpdate(t, f.handler, textUpdate("https://youtu.be/dQw4w9WgXcQ"))
	postUpdate(t, f.handler, textUpdate("https://www.youtube.com/watch?v=dQw4w9WgXcQ"))

	if !strings.Contains(lastReply(f), "already in your queue") {
		t.Errorf("Expected a duplicate notice, got %q", lastReply(f))
	}
}

func TestHandleWebhook_NotALink(t *testing.T) {
	f := newWebhookFixture(t)

	postUpdate(t, f.handler, textUpdate("привет!"))
	if !strings.Contains(lastReply(f), "doesn't look like a video link") {
		t.Errorf("Expected the unrecognized-text reply, got %q", lastReply(f))
	}
}

func TestHandleWebhook_IgnoresNonMessageUpdates(t *testing.T) {
	f := newWebhookFixture(t)

	w := postUpdate(t, f.handler, Update{UpdateID: 2})
	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 for an update without a message, got %d", w.Code)
	}
	if len(*f.sent) != 0 {
		t.Errorf("Expected no reply, got %v", *f.sent)
	}
}

func TestHandleWebhook_MalformedBody(t *testing.T) {
	f := newWebhookFixture(t)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/webhook", f.handler.HandleWebhook)

	req := httptest.NewRequest("POST", "/webhook", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected 200 even for a malformed body, got %d", w.Code)
	}
}
