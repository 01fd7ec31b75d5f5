package ssb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hashicorp/go-multierror"

	"github.com/peppermintos/ice/internal/browser"
	"github.com/peppermintos/ice/internal/config"
	"github.com/peppermintos/ice/internal/desktop"
	"github.com/peppermintos/ice/internal/store"
)

type fixture struct {
	cfg       *config.Config
	store     *store.Store
	mgr       *Manager
	refreshes int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	root := t.TempDir()
	cfg := config.Default()
	cfg.Paths.IceDir = filepath.Join(root, "ice")
	cfg.Paths.AppsDir = filepath.Join(root, "applications")
	cfg.Paths.FirefoxResources = filepath.Join(root, "resources")
	cfg.Paths.DefaultIcon = filepath.Join(root, "ice.png")
	os.WriteFile(cfg.Paths.DefaultIcon, []byte("PNG"), 0644)
	if err := cfg.EnsureDirs(); err != nil {
		t.Fatal(err)
	}

	st, err := store.Open(cfg.DBPath())
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	f := &fixture{cfg: cfg, store: st}
	orig := refreshDesktopDB
	refreshDesktopDB = func(string) error {
		f.refreshes++
		return nil
	}
	t.Cleanup(func() { refreshDesktopDB = orig })

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	f.mgr = NewManager(cfg, st, nil, log)
	return f
}

func (f *fixture) create(t *testing.T, req Request) *Result {
	t.Helper()
	res, err := f.mgr.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create(%q): %v", req.Title, err)
	}
	return res
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}

func TestCreateIsolatedChromium(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, Request{
		Title:    "Google Mail!",
		URL:      "mail.google.com",
		Category: desktop.Office,
		Browser:  browser.Chromium,
		Isolate:  true,
	})

	launcher := filepath.Join(f.cfg.Paths.AppsDir, "googlemail.desktop")
	content := readFile(t, launcher)
	profileDir := filepath.Join(f.cfg.ProfilesDir(), "googlemail")
	for _, want := range []string{
		"Name=Google Mail!\n",
		"Exec=chromium-browser --app=http://mail.google.com --class=ICE-SSB-googlemail --user-data-dir=" + profileDir + "\n",
		"X-ICE-SSB-Profile=googlemail\n",
		"Categories=GTK;Office;\n",
		"Icon=" + filepath.Join(f.cfg.IconDir(), "googlemail.png") + "\n",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("launcher missing %q:\n%s", want, content)
		}
	}
	if res.ProfileDir != profileDir {
		t.Errorf("ProfileDir = %q", res.ProfileDir)
	}
	if readFile(t, filepath.Join(f.cfg.IconDir(), "googlemail.png")) != "PNG" {
		t.Error("icon not copied")
	}
	if f.refreshes != 1 {
		t.Errorf("refreshes = %d, want 1", f.refreshes)
	}

	rec, err := f.store.GetSSB("googlemail")
	if err != nil {
		t.Fatalf("GetSSB: %v", err)
	}
	if rec.URL != "http://mail.google.com" || !rec.Isolated || rec.Launcher != launcher {
		t.Errorf("record = %+v", rec)
	}
}

func TestCreateSharedChromiumHasNoMarker(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, Request{Title: "Docs", URL: "https://docs.example.com", Browser: browser.Brave})

	content := readFile(t, res.Entry.Path)
	if strings.Contains(content, "X-ICE-SSB-Profile") || strings.Contains(content, "--user-data-dir") {
		t.Errorf("shared launcher has a profile:\n%s", content)
	}
	if res.ProfileDir != "" {
		t.Errorf("ProfileDir = %q", res.ProfileDir)
	}
	if !strings.Contains(content, "Categories=GTK;Network;\n") {
		t.Errorf("expected default category:\n%s", content)
	}
}

func TestCreateFirefoxForcesIsolation(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, Request{Title: "Calendar", URL: "https://cal.example.com", Browser: browser.Firefox})

	dir := filepath.Join(f.cfg.FirefoxDir(), "calendar")
	if res.ProfileDir != dir {
		t.Errorf("ProfileDir = %q", res.ProfileDir)
	}
	if res.Entry.Marker != desktop.MarkerFirefox {
		t.Errorf("marker = %v", res.Entry.Marker)
	}
	if !exists(filepath.Join(dir, "chrome", "userChrome.css")) || !exists(filepath.Join(dir, "user.js")) {
		t.Error("firefox profile not initialised")
	}
	if !strings.Contains(readFile(t, res.Entry.Path), "IceFirefox=calendar\n") {
		t.Error("missing IceFirefox marker")
	}
}

func TestCreateEpiphany(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, Request{Title: "Maps", URL: "https://maps.example.com", Browser: browser.Epiphany})

	launcher := filepath.Join(f.cfg.Paths.AppsDir, "maps.desktop")
	dir := filepath.Join(f.cfg.EpiphanyDir(), "epiphany-maps")

	target, err := os.Readlink(launcher)
	if err != nil {
		t.Fatalf("launcher should be a symlink: %v", err)
	}
	if target != filepath.Join(dir, "epiphany-maps.desktop") {
		t.Errorf("symlink target = %q", target)
	}
	content := readFile(t, launcher)
	if !strings.Contains(content, "Icon="+filepath.Join(dir, "app-icon.png")+"\n") {
		t.Errorf("icon should live in the profile:\n%s", content)
	}
	if !strings.Contains(content, `--profile="`+dir+`"`) {
		t.Errorf("exec missing quoted profile:\n%s", content)
	}
	if !exists(filepath.Join(dir, "app-icon.png")) {
		t.Error("app-icon not copied")
	}

	entries, _ := f.mgr.List()
	if len(entries) != 1 || entries[0].Marker != desktop.MarkerEpiphany || res.Entry.Profile != "maps" {
		t.Errorf("entries = %+v", entries)
	}
}

func TestCreateRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	f.create(t, Request{Title: "Chat", URL: "chat.example.com", Browser: browser.Chrome})

	_, err := f.mgr.Create(context.Background(), Request{Title: "C-h-a-t 2", URL: "other.example.com", Browser: browser.Vivaldi})
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("err = %v, want ErrDuplicate", err)
	}
}

func TestCreateValidatesName(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.mgr.Create(ctx, Request{Title: "  ", URL: "x.com", Browser: browser.Chrome}); !errors.Is(err, desktop.ErrEmptyName) {
		t.Errorf("blank title: err = %v", err)
	}
	if _, err := f.mgr.Create(ctx, Request{Title: "1234", URL: "x.com", Browser: browser.Chrome}); !errors.Is(err, desktop.ErrInvalidName) {
		t.Errorf("digits only: err = %v", err)
	}
}

func TestCreateInvalidAddress(t *testing.T) {
	f := newFixture(t)
	if _, err := f.mgr.Create(context.Background(), Request{Title: "Bad", URL: "ftp://x", Browser: browser.Chrome}); err == nil {
		t.Error("expected error for ftp address")
	}
}

func TestCreateMissingUserIcon(t *testing.T) {
	f := newFixture(t)
	_, err := f.mgr.Create(context.Background(), Request{
		Title: "Pics", URL: "pics.example.com", Browser: browser.Chrome,
		IconPath: filepath.Join(t.TempDir(), "missing.svg"),
	})
	if err == nil {
		t.Fatal("expected error for missing icon")
	}
	if exists(filepath.Join(f.cfg.Paths.AppsDir, "pics.desktop")) {
		t.Error("launcher written despite error")
	}
}

func TestCreateRejectsIconType(t *testing.T) {
	f := newFixture(t)
	doc := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(doc, []byte("text"), 0644)

	_, err := f.mgr.Create(context.Background(), Request{
		Title: "Notes", URL: "notes.example.com", Browser: browser.Chrome, IconPath: doc,
	})
	if !errors.Is(err, ErrIconType) {
		t.Fatalf("err = %v, want ErrIconType", err)
	}
	if exists(filepath.Join(f.cfg.Paths.AppsDir, "notes.desktop")) {
		t.Error("launcher written despite error")
	}
}

func TestIsIconFile(t *testing.T) {
	for path, want := range map[string]bool{
		"a.png": true, "b.JPG": true, "c.jpeg": true, "d.gif": true,
		"e.xpm": true, "f.svg": true, "g.ico": false, "h.txt": false, "noext": false,
	} {
		if got := IsIconFile(path); got != want {
			t.Errorf("IsIconFile(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestCreateFallsBackToThemeIcon(t *testing.T) {
	f := newFixture(t)
	os.Remove(f.cfg.Paths.DefaultIcon)

	res := f.create(t, Request{Title: "Notes", URL: "notes.example.com", Browser: browser.Chrome})
	if res.Entry.Icon != FallbackIcon {
		t.Errorf("icon = %q, want %q", res.Entry.Icon, FallbackIcon)
	}
}

type stubFetcher struct {
	err error
}

func (s stubFetcher) Fetch(ctx context.Context, pageURL, dir string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	path := filepath.Join(dir, "favicon.svg")
	return path, os.WriteFile(path, []byte("<svg/>"), 0644)
}

func TestCreateWithFavicon(t *testing.T) {
	f := newFixture(t)
	f.mgr.icons = stubFetcher{}

	res := f.create(t, Request{Title: "Wiki", URL: "wiki.example.com", Browser: browser.Chrome, FetchFavicon: true})
	if res.Entry.Icon != filepath.Join(f.cfg.IconDir(), "wiki.svg") {
		t.Errorf("icon = %q", res.Entry.Icon)
	}
	if res.IconErr != nil {
		t.Errorf("IconErr = %v", res.IconErr)
	}
}

func TestCreateFaviconFailureUsesDefault(t *testing.T) {
	f := newFixture(t)
	f.mgr.icons = stubFetcher{err: errors.New("offline")}

	res := f.create(t, Request{Title: "Wiki", URL: "wiki.example.com", Browser: browser.Chrome, FetchFavicon: true})
	if res.IconErr == nil {
		t.Error("expected IconErr")
	}
	if res.Entry.Icon != filepath.Join(f.cfg.IconDir(), "wiki.png") {
		t.Errorf("icon = %q", res.Entry.Icon)
	}
}

func TestFind(t *testing.T) {
	f := newFixture(t)
	f.create(t, Request{Title: "Team Chat", URL: "chat.example.com", Browser: browser.Chrome})

	for _, q := range []string{"teamchat", "Team Chat", "team chat", "TEAM-CHAT"} {
		e, err := f.mgr.Find(q)
		if err != nil {
			t.Errorf("Find(%q): %v", q, err)
			continue
		}
		if e.Slug() != "teamchat" {
			t.Errorf("Find(%q) = %q", q, e.Slug())
		}
	}
	if _, err := f.mgr.Find("nothing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRemoveIsolated(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, Request{Title: "Mail", URL: "mail.example.com", Browser: browser.Chromium, Isolate: true})
	os.MkdirAll(filepath.Join(res.ProfileDir, "Default"), 0755)

	if _, err := f.mgr.Remove(context.Background(), "mail"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	for _, p := range []string{res.Entry.Path, res.ProfileDir, filepath.Join(f.cfg.IconDir(), "mail.png")} {
		if exists(p) {
			t.Errorf("%s still exists", p)
		}
	}

	rec, _ := f.store.GetSSB("mail")
	if rec == nil || !rec.Removed() {
		t.Errorf("history not updated: %+v", rec)
	}
}

func TestRemoveEpiphany(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, Request{Title: "Maps", URL: "maps.example.com", Browser: browser.Epiphany})

	if _, err := f.mgr.Remove(context.Background(), "Maps"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if exists(res.ProfileDir) || exists(filepath.Join(f.cfg.Paths.AppsDir, "maps.desktop")) {
		t.Error("epiphany launcher or profile left behind")
	}
}

func TestRemoveKeepsSimilarlyNamedIcons(t *testing.T) {
	f := newFixture(t)
	f.create(t, Request{Title: "Mail", URL: "mail.example.com", Browser: browser.Chrome})
	f.create(t, Request{Title: "Mailbox", URL: "box.example.com", Browser: browser.Chrome})

	if _, err := f.mgr.Remove(context.Background(), "mail"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !exists(filepath.Join(f.cfg.IconDir(), "mailbox.png")) {
		t.Error("mailbox icon removed")
	}
}

func TestRemoveRefusesUnsafeProfile(t *testing.T) {
	f := newFixture(t)
	victim := filepath.Join(f.cfg.Paths.IceDir, "precious")
	os.MkdirAll(victim, 0755)

	launcher := filepath.Join(f.cfg.Paths.AppsDir, "evil.desktop")
	os.WriteFile(launcher, []byte(`[Desktop Entry]
Name=Evil
Exec=chromium-browser --app=http://x
Icon=web-browser
X-ICE-SSB-Profile=../precious
StartupWMClass=ICE-SSB-evil
`), 0644)

	if _, err := f.mgr.Remove(context.Background(), "evil"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !exists(victim) {
		t.Error("profile path escaped its root")
	}
	if exists(launcher) {
		t.Error("launcher not removed")
	}
}

// failRemoval makes removeAll fail for paths whose last element is in names.
func failRemoval(t *testing.T, names ...string) {
	t.Helper()
	orig := removeAll
	removeAll = func(path string) error {
		for _, n := range names {
			if filepath.Base(path) == n {
				return &os.PathError{Op: "unlinkat", Path: path, Err: os.ErrPermission}
			}
		}
		return orig(path)
	}
	t.Cleanup(func() { removeAll = orig })
}

func TestRemoveContinuesAfterProfileFailure(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, Request{Title: "Mail", URL: "mail.example.com", Browser: browser.Chromium, Isolate: true})
	os.MkdirAll(res.ProfileDir, 0755)
	failRemoval(t, "mail")

	_, err := f.mgr.Remove(context.Background(), "mail")
	var merr *multierror.Error
	if !errors.As(err, &merr) || len(merr.Errors) != 1 {
		t.Fatalf("err = %v, want one aggregated error", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("err = %v, want ErrPermission", err)
	}
	if !exists(res.ProfileDir) {
		t.Error("profile removed despite failure")
	}
	if exists(res.Entry.Path) || exists(filepath.Join(f.cfg.IconDir(), "mail.png")) {
		t.Error("launcher or icon left behind")
	}
	rec, _ := f.store.GetSSB("mail")
	if rec == nil || !rec.Removed() {
		t.Errorf("history not updated: %+v", rec)
	}
}

func TestRemoveNotFound(t *testing.T) {
	f := newFixture(t)
	if _, err := f.mgr.Remove(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestReconcileRemovesOrphans(t *testing.T) {
	f := newFixture(t)
	keep := f.create(t, Request{Title: "Keep", URL: "keep.example.com", Browser: browser.Chromium, Isolate: true})
	os.MkdirAll(keep.ProfileDir, 0755)
	web := f.create(t, Request{Title: "Web", URL: "web.example.com", Browser: browser.Epiphany})

	orphans := []string{
		filepath.Join(f.cfg.ProfilesDir(), "gone"),
		filepath.Join(f.cfg.FirefoxDir(), "old"),
		filepath.Join(f.cfg.EpiphanyDir(), "epiphany-stale"),
		// name owned by an isolated launcher, but in the wrong root
		filepath.Join(f.cfg.FirefoxDir(), "keep"),
	}
	for _, dir := range orphans {
		os.MkdirAll(dir, 0755)
	}
	stray := filepath.Join(f.cfg.ProfilesDir(), "stray.txt")
	os.WriteFile(stray, []byte("x"), 0644)

	report, err := f.mgr.Reconcile(context.Background(), ReconcileOptions{})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(report.Removed) != len(orphans)+1 {
		t.Errorf("removed = %v", report.Removed)
	}
	for _, p := range append(orphans, stray) {
		if exists(p) {
			t.Errorf("%s should be removed", p)
		}
	}
	if !exists(keep.ProfileDir) || !exists(web.ProfileDir) {
		t.Error("live profiles removed")
	}

	events, _ := f.store.ListEvents("gone")
	if len(events) != 1 || events[0].Kind != store.EventOrphanRemoved {
		t.Errorf("events = %+v", events)
	}
}

func TestReconcileRestoresFirefoxProfile(t *testing.T) {
	f := newFixture(t)
	res := f.create(t, Request{Title: "Tasks", URL: "tasks.example.com", Browser: browser.Firefox})
	os.RemoveAll(res.ProfileDir)

	report, err := f.mgr.Reconcile(context.Background(), ReconcileOptions{})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(report.Restored) != 1 || report.Restored[0] != res.ProfileDir {
		t.Errorf("restored = %v", report.Restored)
	}
	if !exists(filepath.Join(res.ProfileDir, "user.js")) {
		t.Error("profile not restored")
	}
}

func TestReconcileDryRun(t *testing.T) {
	f := newFixture(t)
	orphan := filepath.Join(f.cfg.ProfilesDir(), "gone")
	os.MkdirAll(orphan, 0755)

	report, err := f.mgr.Reconcile(context.Background(), ReconcileOptions{DryRun: true, Force: true})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if len(report.Removed) != 1 || report.Empty() {
		t.Errorf("report = %+v", report)
	}
	if !exists(orphan) {
		t.Error("dry run removed a directory")
	}
}

func TestReconcileContinuesAfterFailure(t *testing.T) {
	f := newFixture(t)
	keep := f.create(t, Request{Title: "Keep", URL: "keep.example.com", Browser: browser.Chromium, Isolate: true})
	os.MkdirAll(keep.ProfileDir, 0755)

	stuck := []string{
		filepath.Join(f.cfg.ProfilesDir(), "aaa"),
		filepath.Join(f.cfg.FirefoxDir(), "bbb"),
	}
	gone := []string{
		filepath.Join(f.cfg.ProfilesDir(), "zzz"),
		filepath.Join(f.cfg.FirefoxDir(), "yyy"),
		filepath.Join(f.cfg.EpiphanyDir(), "epiphany-old"),
	}
	for _, dir := range append(append([]string{}, stuck...), gone...) {
		os.MkdirAll(dir, 0755)
	}
	failRemoval(t, "aaa", "bbb")

	report, err := f.mgr.Reconcile(context.Background(), ReconcileOptions{})
	var merr *multierror.Error
	if !errors.As(err, &merr) || len(merr.Errors) != 2 {
		t.Fatalf("err = %v, want two aggregated errors", err)
	}
	for _, p := range stuck {
		if !strings.Contains(err.Error(), p) {
			t.Errorf("error does not mention %s", p)
		}
		if !exists(p) {
			t.Errorf("%s removed despite failure", p)
		}
	}
	if report == nil || len(report.Removed) != len(gone) {
		t.Fatalf("report = %+v", report)
	}
	for i, p := range gone {
		if exists(p) {
			t.Errorf("%s should be removed", p)
		}
		if report.Removed[i] != p {
			t.Errorf("removed[%d] = %s, want %s", i, report.Removed[i], p)
		}
	}
	if !exists(keep.ProfileDir) {
		t.Error("live profile removed")
	}
}

func TestReconcileHoldsWithoutLaunchers(t *testing.T) {
	f := newFixture(t)
	profile := filepath.Join(f.cfg.ProfilesDir(), "mail")
	os.MkdirAll(profile, 0755)

	report, err := f.mgr.Reconcile(context.Background(), ReconcileOptions{})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !report.Held || len(report.Removed) != 0 {
		t.Errorf("report = %+v", report)
	}
	if !exists(profile) {
		t.Fatal("profile removed with no launchers present")
	}

	report, err = f.mgr.Reconcile(context.Background(), ReconcileOptions{Force: true})
	if err != nil {
		t.Fatalf("Reconcile(force): %v", err)
	}
	if report.Held || len(report.Removed) != 1 || exists(profile) {
		t.Errorf("forced pass did not remove profile: %+v", report)
	}
}

func TestReconcileMissingDirs(t *testing.T) {
	f := newFixture(t)
	os.RemoveAll(f.cfg.Paths.IceDir)
	os.RemoveAll(f.cfg.Paths.AppsDir)

	report, err := f.mgr.Reconcile(context.Background(), ReconcileOptions{})
	if err != nil {
		t.Fatalf("Reconcile: %v", err)
	}
	if !report.Empty() {
		t.Errorf("report = %+v", report)
	}
}

func TestNilRecorder(t *testing.T) {
	f := newFixture(t)
	f.mgr.rec = nil
	f.create(t, Request{Title: "Solo", URL: "solo.example.com", Browser: browser.Chrome})
	if _, err := f.mgr.Remove(context.Background(), "solo"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
}
