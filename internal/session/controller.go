package session

import (
	"encoding/gob"
	"time"

	"alms/internal/model"
)

// ContextKey RequestContext 中保存 *Controller 的 key
const ContextKey = "alms.session"

const (
	keyIdentity  = "identity"
	keyClockInAt = "clock_in_at"
)

// Flash 级别
const (
	LevelSuccess = "success"
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

func init() {
	// cookie store 用 gob 编码 interface{} 值
	gob.Register(model.Identity{})
	gob.Register(Flash{})
}

type State int

const (
	LoggedOut State = iota
	LoggedIn
)

func (s State) String() string {
	if s == LoggedIn {
		return "logged_in"
	}
	return "logged_out"
}

// Flash 跨一次重定向展示的提示
type Flash struct {
	Level string
	Text  string
}

// Store hertz-contrib/sessions 的 Session 满足该接口
type Store interface {
	Get(key interface{}) interface{}
	Set(key interface{}, val interface{})
	Delete(key interface{})
	Clear()
	AddFlash(value interface{}, vars ...string)
	Flashes(vars ...string) []interface{}
	Save() error
}

// Controller 每个浏览器一份的登录状态机：LoggedOut <-> LoggedIn{identity, clock_in_at}
type Controller struct {
	store Store
}

func New(store Store) *Controller {
	return &Controller{store: store}
}

func (c *Controller) State() State {
	if _, ok := c.Identity(); ok {
		return LoggedIn
	}
	return LoggedOut
}

func (c *Controller) Identity() (model.Identity, bool) {
	identity, ok := c.store.Get(keyIdentity).(model.Identity)
	if !ok || identity.IsZero() {
		return model.Identity{}, false
	}
	return identity, true
}

// Login 丢弃旧会话内容后进入 LoggedIn，clock_in_at 为空
func (c *Controller) Login(identity model.Identity) {
	c.store.Clear()
	c.store.Set(keyIdentity, identity)
}

// Logout 清空所有内容，包括未展示的提示
func (c *Controller) Logout() {
	c.store.Clear()
}

// ClockInAt 只用于展示和按钮切换，是否真有未关闭记录以数据库为准
func (c *Controller) ClockInAt() (time.Time, bool) {
	nanos, ok := c.store.Get(keyClockInAt).(int64)
	if !ok {
		return time.Time{}, false
	}
	return time.Unix(0, nanos), true
}

func (c *Controller) StartClock(ts time.Time) {
	if c.State() != LoggedIn {
		return
	}
	c.store.Set(keyClockInAt, ts.UnixNano())
}

func (c *Controller) StopClock() {
	c.store.Delete(keyClockInAt)
}

func (c *Controller) AddFlash(level, text string) {
	c.store.AddFlash(Flash{Level: level, Text: text})
}

// Flashes 取出并清空待展示提示
func (c *Controller) Flashes() []Flash {
	raw := c.store.Flashes()
	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

func (c *Controller) Save() error {
	return c.store.Save()
}
