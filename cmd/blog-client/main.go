package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pribylovaa/go-blog-client/internal/api"
	"github.com/pribylovaa/go-blog-client/internal/api/rest"
	"github.com/pribylovaa/go-blog-client/internal/config"
	"github.com/pribylovaa/go-blog-client/internal/service"
	"github.com/pribylovaa/go-blog-client/internal/session"
	logctx "github.com/pribylovaa/go-blog-client/pkg/log"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.Parse()

	cfg := config.MustLoad(configPath)

	log := setupLogger(cfg.Env)
	slog.SetDefault(log)
	log.Info("starting blog-client", "env", cfg.Env, "api", cfg.API.BaseURL)

	rootCtx, rootCancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer rootCancel()

	sess := session.New()

	client, err := rest.New(rest.Options{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		UserAgent: cfg.API.UserAgent,
		Tokens:    sess,
		Metrics:   rest.NewMetrics(nil),
	})
	if err != nil {
		log.Error("client_init_failed", slog.String("err", err.Error()))
		os.Exit(1)
	}

	var ready int32 // 0 — not ready; 1 — ready

	mux := http.NewServeMux()
	mux.HandleFunc("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if atomic.LoadInt32(&ready) == 1 {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("ok"))
			return
		}

		http.Error(w, "not ready", http.StatusServiceUnavailable)
	})

	mux.Handle("/metrics", promhttp.Handler())

	metricsAddr := cfg.Metrics.Addr()
	metricsSrv := &http.Server{
		Addr:              metricsAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ln, err := net.Listen("tcp", metricsAddr)
	if err != nil {
		log.Error("metrics_listen_failed", slog.String("addr", metricsAddr), slog.String("err", err.Error()))
		os.Exit(1)
	}

	go func() {
		if serr := metricsSrv.Serve(ln); serr != nil && !errors.Is(serr, http.ErrServerClosed) {
			log.Error("metrics_serve_failed", slog.String("err", serr.Error()))
		}
	}()

	log.Info("metrics_listen_start", slog.String("addr", metricsAddr))

	atomic.StoreInt32(&ready, 1)

	app := &app{
		client:  client,
		session: sess,
		feed:    service.NewFeedEngine(client, cfg.Feed.PageSize),
		log:     log,
	}

	app.run(rootCtx)

	atomic.StoreInt32(&ready, 0)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("metrics_shutdown_incomplete", slog.String("err", err.Error()))
	}

	log.Info("client_stopped")
}

func setupLogger(env string) *slog.Logger {
	switch env {
	case envLocal:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envDev:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	default:
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
}

// app — интерактивное состояние терминального клиента: лента всегда одна,
// карточка поста и дерево комментариев существуют только для открытого поста.
type app struct {
	client  *rest.Client
	session *session.Session
	feed    *service.FeedEngine
	log     *slog.Logger

	post   *service.PostManager
	thread *service.ThreadManager
}

func (a *app) run(ctx context.Context) {
	ctx = logctx.Into(ctx, a.log)

	fmt.Println("blog-client — 'help' для списка команд, 'quit' для выхода")

	sc := bufio.NewScanner(os.Stdin)
	lines := make(chan string)

	go func() {
		defer close(lines)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Print("> ")

		var line string
		var ok bool
		select {
		case <-ctx.Done():
			fmt.Println()
			return
		case line, ok = <-lines:
			if !ok {
				return
			}
		}

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		if fields[0] == "quit" || fields[0] == "exit" {
			return
		}

		a.dispatch(ctx, fields[0], fields[1:])
	}
}

func (a *app) dispatch(ctx context.Context, cmd string, args []string) {
	switch cmd {
	case "help":
		a.printHelp()
	case "login":
		a.cmdLogin(ctx, args)
	case "register":
		a.cmdRegister(ctx, args)
	case "logout":
		a.session.Clear()
		fmt.Println("сессия сброшена")
	case "whoami":
		if id, ok := a.session.CurrentUserID(); ok {
			fmt.Println(id)
		} else {
			fmt.Println("аноним")
		}
	case "search":
		a.cmdSearch(ctx, strings.Join(args, " "))
	case "page":
		a.cmdPage(ctx, args)
	case "ls":
		a.printFeed()
	case "open":
		a.cmdOpen(ctx, args)
	case "new":
		a.cmdNewPost(ctx, args)
	case "edit":
		a.cmdEditPost(ctx, args)
	case "rm":
		a.cmdDeletePost(ctx)
	case "like":
		a.cmdLike(ctx)
	case "comment":
		a.cmdComment(ctx, strings.Join(args, " "))
	case "reply":
		a.cmdReply(ctx, args)
	case "likec":
		a.cmdLikeComment(ctx, args)
	case "rmc":
		a.cmdDeleteComment(ctx, args)
	case "rmr":
		a.cmdDeleteReply(ctx, args)
	case "replies":
		a.cmdToggleReplies(args)
	case "comments":
		a.cmdToggleComments()
	default:
		fmt.Printf("неизвестная команда %q, см. help\n", cmd)
	}
}

func (a *app) printHelp() {
	fmt.Print(`команды:
  login <email> <password>     вход (токен кладётся в сессию)
  register <user> <email> <pw> регистрация
  logout                       выход
  whoami                       id текущего пользователя
  search <term>                поиск по ленте (страница сбрасывается в 1)
  page <n>                     перейти на страницу n
  ls                           показать текущую страницу ленты
  open <postID>                открыть пост и его комментарии
  new <title> | <content>      опубликовать пост
  edit <title> | <content>     изменить свой открытый пост
  rm                           удалить свой открытый пост
  like                         лайк/анлайк открытого поста
  comment <text>               комментарий к открытому посту
  reply <commentID> <text>     ответ на комментарий
  likec <commentID>            лайк/анлайк комментария
  rmc <commentID>              удалить свой комментарий (с ответами)
  rmr <commentID> <replyID>    удалить свой ответ
  replies <commentID>          развернуть/свернуть ответы
  comments                     показать/скрыть панель комментариев
  quit                         выход
`)
}

func (a *app) cmdLogin(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("использование: login <email> <password>")
		return
	}

	token, err := a.client.Login(ctx, args[0], args[1])
	if err != nil {
		fmt.Println("ошибка входа:", err)
		return
	}

	a.session.SetToken(token)

	if id, ok := a.session.CurrentUserID(); ok {
		fmt.Println("вход выполнен, user id:", id)
	} else {
		fmt.Println("вход выполнен (идентичность из токена не извлечена)")
	}
}

func (a *app) cmdRegister(ctx context.Context, args []string) {
	if len(args) != 3 {
		fmt.Println("использование: register <username> <email> <password>")
		return
	}

	err := a.client.Register(ctx, api.RegisterInput{
		Username: args[0],
		Email:    args[1],
		Password: args[2],
	})
	if err != nil {
		fmt.Println("регистрация не выполнена:", err)
		return
	}

	fmt.Println("аккаунт создан, выполните login")
}

// splitTitleContent разбирает "title | content" из аргументов команды.
func splitTitleContent(args []string) (string, string, bool) {
	joined := strings.Join(args, " ")
	title, content, ok := strings.Cut(joined, "|")
	if !ok {
		return "", "", false
	}

	return strings.TrimSpace(title), strings.TrimSpace(content), true
}

func (a *app) cmdNewPost(ctx context.Context, args []string) {
	title, content, ok := splitTitleContent(args)
	if !ok {
		fmt.Println("использование: new <title> | <content>")
		return
	}

	post, err := service.CreatePost(ctx, a.client, title, content)
	if err != nil {
		fmt.Println("пост не создан:", err)
		return
	}

	fmt.Println("опубликован пост", post.ID)

	if err := a.feed.Refresh(ctx); err == nil {
		a.printFeed()
	}
}

func (a *app) cmdEditPost(ctx context.Context, args []string) {
	if a.post == nil {
		fmt.Println("пост не открыт")
		return
	}

	title, content, ok := splitTitleContent(args)
	if !ok {
		fmt.Println("использование: edit <title> | <content>")
		return
	}

	if err := a.post.Update(ctx, title, content); err != nil {
		fmt.Println("пост не изменён:", err)
		return
	}

	a.printPost()
}

func (a *app) cmdDeletePost(ctx context.Context) {
	if a.post == nil {
		fmt.Println("пост не открыт")
		return
	}

	if err := a.post.Delete(ctx); err != nil {
		fmt.Println("пост не удалён:", err)
		return
	}

	a.post, a.thread = nil, nil
	fmt.Println("пост удалён")

	if err := a.feed.Refresh(ctx); err == nil {
		a.printFeed()
	}
}

func (a *app) cmdSearch(ctx context.Context, term string) {
	if err := a.feed.Search(ctx, term); err != nil {
		fmt.Println("лента не обновлена:", err)
	}

	a.printFeed()
}

func (a *app) cmdPage(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("использование: page <n>")
		return
	}

	n, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Println("использование: page <n>")
		return
	}

	if err := a.feed.SetPage(ctx, n); err != nil {
		fmt.Println("лента не обновлена:", err)
	}

	a.printFeed()
}

func (a *app) printFeed() {
	snap := a.feed.Snapshot()

	if len(snap.Posts) == 0 {
		fmt.Println("постов нет")
		return
	}

	for _, p := range snap.Posts {
		fmt.Printf("%s  %-40q  %s  ♥%d  %s\n",
			p.ID, p.Title, p.Author.Username, p.LikeCount(),
			p.CreatedAt.Local().Format("2006-01-02 15:04"))
	}

	fmt.Printf("страница %d из %d (всего %d)\n", snap.Page, a.feed.TotalPages(), snap.Total)
}

func (a *app) cmdOpen(ctx context.Context, args []string) {
	if len(args) != 1 {
		fmt.Println("использование: open <postID>")
		return
	}

	post := service.NewPostManager(a.client, a.session, args[0])
	if err := post.Load(ctx); err != nil {
		fmt.Println("пост не открыт:", err)
		return
	}

	thread := service.NewThreadManager(a.client, a.session, args[0])
	if err := thread.LoadThread(ctx); err != nil {
		fmt.Println("комментарии не загружены:", err)
	}

	a.post, a.thread = post, thread
	a.printPost()
}

func (a *app) printPost() {
	if a.post == nil {
		fmt.Println("пост не открыт")
		return
	}

	p := a.post.Post()
	if p == nil {
		fmt.Println("пост не загружен")
		return
	}

	owner := ""
	if a.post.IsOwner() {
		owner = "  [ваш пост]"
	}

	fmt.Printf("%q — %s, ♥%d%s\n", p.Title, p.Author.Username, p.LikeCount(), owner)

	if a.thread == nil || !a.thread.CommentsShown() {
		return
	}

	comments := a.thread.Comments()
	fmt.Printf("комментарии (%d):\n", len(comments))

	for _, c := range comments {
		del := ""
		if a.thread.CanDelete(c.User.ID) {
			del = "  [rmc]"
		}

		fmt.Printf("  %s  %s: %s  ♥%d  (ответов: %d)%s\n",
			c.ID, c.User.Username, c.Text, c.LikeCount(), len(c.Replies), del)

		if !a.thread.RepliesShown(c.ID) {
			continue
		}

		for _, r := range c.Replies {
			del = ""
			if a.thread.CanDelete(r.User.ID) {
				del = "  [rmr]"
			}

			fmt.Printf("      %s  %s: %s%s\n", r.ID, r.User.Username, r.Text, del)
		}
	}
}

func (a *app) cmdLike(ctx context.Context) {
	if a.post == nil {
		fmt.Println("пост не открыт")
		return
	}

	if err := a.post.ToggleLike(ctx); err != nil {
		fmt.Println("лайк не применён:", err)
	}

	a.printPost()
}

func (a *app) cmdComment(ctx context.Context, text string) {
	if a.thread == nil {
		fmt.Println("пост не открыт")
		return
	}

	if err := a.thread.PostComment(ctx, text); err != nil {
		// Текст остаётся у пользователя в истории терминала: можно повторить.
		fmt.Println("комментарий не отправлен:", err)
		return
	}

	a.printPost()
}

func (a *app) cmdReply(ctx context.Context, args []string) {
	if a.thread == nil {
		fmt.Println("пост не открыт")
		return
	}

	if len(args) < 2 {
		fmt.Println("использование: reply <commentID> <text>")
		return
	}

	if err := a.thread.PostReply(ctx, args[0], strings.Join(args[1:], " ")); err != nil {
		fmt.Println("ответ не отправлен:", err)
		return
	}

	a.printPost()
}

func (a *app) cmdLikeComment(ctx context.Context, args []string) {
	if a.thread == nil {
		fmt.Println("пост не открыт")
		return
	}

	if len(args) != 1 {
		fmt.Println("использование: likec <commentID>")
		return
	}

	if err := a.thread.ToggleCommentLike(ctx, args[0]); err != nil {
		fmt.Println("лайк не применён:", err)
	}

	a.printPost()
}

func (a *app) cmdDeleteComment(ctx context.Context, args []string) {
	if a.thread == nil {
		fmt.Println("пост не открыт")
		return
	}

	if len(args) != 1 {
		fmt.Println("использование: rmc <commentID>")
		return
	}

	if err := a.thread.DeleteComment(ctx, args[0]); err != nil {
		fmt.Println("комментарий не удалён:", err)
	}

	a.printPost()
}

func (a *app) cmdDeleteReply(ctx context.Context, args []string) {
	if a.thread == nil {
		fmt.Println("пост не открыт")
		return
	}

	if len(args) != 2 {
		fmt.Println("использование: rmr <commentID> <replyID>")
		return
	}

	if err := a.thread.DeleteReply(ctx, args[0], args[1]); err != nil {
		fmt.Println("ответ не удалён:", err)
	}

	a.printPost()
}

func (a *app) cmdToggleReplies(args []string) {
	if a.thread == nil {
		fmt.Println("пост не открыт")
		return
	}

	if len(args) != 1 {
		fmt.Println("использование: replies <commentID>")
		return
	}

	a.thread.ToggleReplies(args[0])
	a.printPost()
}

func (a *app) cmdToggleComments() {
	if a.thread == nil {
		fmt.Println("пост не открыт")
		return
	}

	a.thread.ToggleComments()
	a.printPost()
}
