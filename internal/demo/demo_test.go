package demo

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/pthm/genview"
	genviewecho "github.com/pthm/genview/adapters/echo"
	"github.com/pthm/genview/store/memory"
)

var testKey = []byte("0123456789abcdef0123456789abcdef")

func newTestApp(t *testing.T, renderer string, todos genview.Store[*Todo]) *genview.Registry {
	t.Helper()
	reg, err := New(Options{
		Store:    todos,
		Renderer: renderer,
		Logger:   zerolog.Nop(),
		Key:      testKey,
	})
	require.NoError(t, err)
	return reg
}

func onlyTodo(t *testing.T, todos genview.Store[*Todo]) *Todo {
	t.Helper()
	all, err := todos.All(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1)
	return all[0]
}

func TestTodoLifecycle(t *testing.T) {
	for _, renderer := range []string{RendererPongo, RendererTempl} {
		t.Run(renderer, func(t *testing.T) {
			todos := memory.New[*Todo]()
			reg := newTestApp(t, renderer, todos)

			res, err := genview.TestGet(reg, "/")
			require.NoError(t, err)
			require.Equal(t, http.StatusFound, res.StatusCode)
			require.True(t, res.RedirectedTo("/todos"))

			res, err = genview.TestGet(reg, "/todos")
			require.NoError(t, err)
			require.True(t, res.IsOK())
			require.True(t, res.HTMLContainsAll("Nothing to do.", "0 open"))

			res, err = genview.TestPost(reg, "/todos/new", map[string]string{"title": "  "})
			require.NoError(t, err)
			require.True(t, res.IsOK())
			require.True(t, res.HTMLContains("This field is required."))
			require.Equal(t, 0, todos.Len())

			res, err = genview.TestPost(reg, "/todos/new", map[string]string{
				"title": "Buy <b>milk</b>",
				"notes": "semi-skimmed",
			})
			require.NoError(t, err)
			require.True(t, res.RedirectedTo("/todos"))
			require.True(t, res.HasFlash(genview.FlashSuccess, genview.CreatedMessage))

			todo := onlyTodo(t, todos)
			require.Equal(t, "Buy milk", todo.Title)
			require.Equal(t, "semi-skimmed", todo.Notes)
			require.NotEmpty(t, todo.ID)

			res, err = genview.NewTestCall(http.MethodGet, "/todos").
				WithCookies(res.Cookies).
				Execute(reg)
			require.NoError(t, err)
			require.True(t, res.HTMLContainsAll("Buy milk", "1 open", "/todos/"+todo.ID+"/edit", "/todos/"+todo.ID+"/delete"))
			require.True(t, res.HasFlash(genview.FlashSuccess, genview.CreatedMessage), "flash shown after the redirect")

			res, err = genview.TestGet(reg, "/todos/"+todo.ID+"/edit")
			require.NoError(t, err)
			require.True(t, res.IsOK())
			require.True(t, res.HTMLContainsAll("Edit todo", `value="Buy milk"`))

			res, err = genview.TestPost(reg, "/todos/"+todo.ID+"/edit", map[string]string{
				"title": "Buy oat milk",
				"done":  "on",
			})
			require.NoError(t, err)
			require.True(t, res.RedirectedTo("/todos"))
			require.True(t, res.HasFlash(genview.FlashSuccess, genview.EditedMessage))

			edited := onlyTodo(t, todos)
			require.Equal(t, todo.ID, edited.ID)
			require.Equal(t, "Buy oat milk", edited.Title)
			require.True(t, edited.Done)

			res, err = genview.TestGet(reg, "/todos")
			require.NoError(t, err)
			require.True(t, res.HTMLContains("0 open"))

			res, err = genview.NewTestCall(http.MethodPost, "/todos/"+todo.ID+"/delete").
				HTMX().
				Execute(reg)
			require.NoError(t, err)
			require.True(t, res.IsOK())
			require.True(t, res.HasHeader("HX-Redirect", "/todos"))
			require.True(t, res.HasFlash(genview.FlashSuccess, genview.DeletedMessage))
			require.Equal(t, 0, todos.Len())
		})
	}
}

func TestMissingTodo(t *testing.T) {
	reg := newTestApp(t, RendererPongo, memory.New[*Todo]())

	for _, target := range []string{"/todos/nope/edit", "/todos/nope/delete"} {
		res, err := genview.TestGet(reg, target)
		require.NoError(t, err)
		require.Equal(t, http.StatusNotFound, res.StatusCode, target)
	}
}

func TestMethodNotAllowed(t *testing.T) {
	reg := newTestApp(t, RendererPongo, memory.New[*Todo]())

	res, err := genview.TestPost(reg, "/about", nil)
	require.NoError(t, err)
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
	require.Equal(t, "GET", res.Headers.Get("Allow"))
}

func TestFeedback(t *testing.T) {
	for _, renderer := range []string{RendererPongo, RendererTempl} {
		t.Run(renderer, func(t *testing.T) {
			reg := newTestApp(t, renderer, memory.New[*Todo]())

			res, err := genview.TestGet(reg, "/about")
			require.NoError(t, err)
			require.True(t, res.HTMLContains(`href="/feedback"`))

			res, err = genview.TestPost(reg, "/feedback", map[string]string{"email": "a@example.com", "message": "hi"})
			require.NoError(t, err)
			require.True(t, res.IsOK())
			require.True(t, res.HTMLContains("Ensure this value has at least 3 characters."))
			require.True(t, res.HTMLContains(`value="a@example.com"`))

			res, err = genview.TestPost(reg, "/feedback", map[string]string{"email": "a@example.com", "message": "Nice demo"})
			require.NoError(t, err)
			require.True(t, res.RedirectedTo("/about"))
			require.True(t, res.HasFlash(genview.FlashSuccess, FeedbackMessage))
		})
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "todos.db")

	todos, closer, err := OpenStore(ctx, StoreConfig{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	reg := newTestApp(t, RendererTempl, todos)

	res, err := genview.TestPost(reg, "/todos/new", map[string]string{"title": "Persist me"})
	require.NoError(t, err)
	require.True(t, res.RedirectedTo("/todos"))
	require.NoError(t, closer.Close())

	todos, closer, err = OpenStore(ctx, StoreConfig{Driver: DriverSQLite, Path: path})
	require.NoError(t, err)
	defer closer.Close()

	todo := onlyTodo(t, todos)
	require.Equal(t, "Persist me", todo.Title)
}

func TestNewErrors(t *testing.T) {
	_, err := New(Options{Renderer: RendererPongo})
	require.Error(t, err)

	_, err = New(Options{Store: memory.New[*Todo](), Renderer: "jinja"})
	require.ErrorContains(t, err, `unknown renderer "jinja"`)
}

func TestConfig(t *testing.T) {
	require.NoError(t, Defaults().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"unknown driver", func(c *Config) { c.Store.Driver = "postgres" }, "store.driver"},
		{"sqlite without path", func(c *Config) { c.Store.Driver = DriverSQLite; c.Store.Path = "" }, "store.path"},
		{"unknown renderer", func(c *Config) { c.Renderer = "jinja" }, "renderer"},
		{"short secret", func(c *Config) { c.Secret = "short" }, "secret"},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }, "log.level"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			require.ErrorContains(t, cfg.Validate(), tt.want)
		})
	}
}

func TestWriteDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "genview.yaml")
	require.NoError(t, WriteDefault(path, false))
	require.Error(t, WriteDefault(path, false), "existing file is kept")
	require.NoError(t, WriteDefault(path, true))
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, "warn")
	log.Info().Msg("hidden")
	log.Warn().Msg("shown")
	require.False(t, strings.Contains(buf.String(), "hidden"))
	require.Contains(t, buf.String(), "shown")
}

func TestEchoMount(t *testing.T) {
	todos := memory.New[*Todo]()
	e := echo.New()
	r := genviewecho.Mount(e, genviewecho.WithKey(testKey))
	require.NoError(t, Register(r, r.Registry, Options{Store: todos, Renderer: RendererTempl}))

	form := url.Values{"title": {"From echo"}}
	req := httptest.NewRequest(http.MethodPost, "/todos/new", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/todos", rec.Header().Get("Location"))
	todo := onlyTodo(t, todos)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/todos/"+todo.ID+"/edit", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `value="From echo"`)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusFound, rec.Code)
}

func TestConcurrentEditAndList(t *testing.T) {
	todos := memory.New(&Todo{ID: "1", Title: "v0"})
	reg := newTestApp(t, RendererTempl, todos)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			res, err := genview.TestPost(reg, "/todos/1/edit", map[string]string{"title": fmt.Sprintf("v%d", i)})
			if err == nil && !res.WasRedirected() {
				t.Errorf("edit %d: status %d", i, res.StatusCode)
			}
		}()
		go func() {
			defer wg.Done()
			res, err := genview.TestGet(reg, "/todos")
			if err == nil && !res.IsOK() {
				t.Errorf("list: status %d", res.StatusCode)
			}
		}()
	}
	wg.Wait()

	todo := onlyTodo(t, todos)
	require.True(t, strings.HasPrefix(todo.Title, "v"))
}

func TestTemplEscapesValues(t *testing.T) {
	todos := memory.New(&Todo{ID: "1", Title: `Fish & "chips"`})
	reg := newTestApp(t, RendererTempl, todos)

	res, err := genview.TestGet(reg, "/todos/1/edit")
	require.NoError(t, err)
	require.True(t, res.IsOK())
	require.Contains(t, res.HTML, `value="Fish &amp; &#34;chips&#34;"`)
}
