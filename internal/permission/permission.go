package permission

import (
	"encoding/json"
	"strings"
)

// BackfilledRoles are reported by the role listing even when no override is stored.
var BackfilledRoles = []string{"user", "premium"}

type Workspace struct {
	Models    bool `json:"models"`
	Knowledge bool `json:"knowledge"`
	Prompts   bool `json:"prompts"`
	Tools     bool `json:"tools"`
}

type Sharing struct {
	PublicModels    bool `json:"public_models"`
	PublicKnowledge bool `json:"public_knowledge"`
	PublicPrompts   bool `json:"public_prompts"`
	PublicTools     bool `json:"public_tools"`
}

type Chat struct {
	Controls          bool `json:"controls"`
	SystemPrompt      bool `json:"system_prompt"`
	FileUpload        bool `json:"file_upload"`
	Delete            bool `json:"delete"`
	Edit              bool `json:"edit"`
	Share             bool `json:"share"`
	Export            bool `json:"export"`
	STT               bool `json:"stt"`
	TTS               bool `json:"tts"`
	Call              bool `json:"call"`
	MultipleModels    bool `json:"multiple_models"`
	Temporary         bool `json:"temporary"`
	TemporaryEnforced bool `json:"temporary_enforced"`
}

type Features struct {
	DirectToolServers bool `json:"direct_tool_servers"`
	WebSearch         bool `json:"web_search"`
	ImageGeneration   bool `json:"image_generation"`
	CodeInterpreter   bool `json:"code_interpreter"`
	Notes             bool `json:"notes"`
}

// Permissions is one complete permission layer.
type Permissions struct {
	Workspace Workspace `json:"workspace"`
	Sharing   Sharing   `json:"sharing"`
	Chat      Chat      `json:"chat"`
	Features  Features  `json:"features"`
}

func DefaultWorkspace() Workspace {
	return Workspace{}
}

func DefaultSharing() Sharing {
	return Sharing{
		PublicModels:    true,
		PublicKnowledge: true,
		PublicPrompts:   true,
		PublicTools:     true,
	}
}

func DefaultChat() Chat {
	return Chat{
		Controls:          true,
		SystemPrompt:      true,
		FileUpload:        true,
		Delete:            true,
		Edit:              true,
		Share:             true,
		Export:            true,
		STT:               true,
		TTS:               true,
		Call:              true,
		MultipleModels:    true,
		Temporary:         true,
		TemporaryEnforced: false,
	}
}

func DefaultFeatures() Features {
	return Features{
		DirectToolServers: false,
		WebSearch:         true,
		ImageGeneration:   true,
		CodeInterpreter:   true,
		Notes:             true,
	}
}

func DefaultPermissions() Permissions {
	return Permissions{
		Workspace: DefaultWorkspace(),
		Sharing:   DefaultSharing(),
		Chat:      DefaultChat(),
		Features:  DefaultFeatures(),
	}
}

// Decoding any category starts from its defaults, so keys missing from the
// payload take the default value rather than the previously stored one.

func (w *Workspace) UnmarshalJSON(b []byte) error {
	type alias Workspace
	a := alias(DefaultWorkspace())
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*w = Workspace(a)
	return nil
}

func (s *Sharing) UnmarshalJSON(b []byte) error {
	type alias Sharing
	a := alias(DefaultSharing())
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*s = Sharing(a)
	return nil
}

func (c *Chat) UnmarshalJSON(b []byte) error {
	type alias Chat
	a := alias(DefaultChat())
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*c = Chat(a)
	return nil
}

func (f *Features) UnmarshalJSON(b []byte) error {
	type alias Features
	a := alias(DefaultFeatures())
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*f = Features(a)
	return nil
}

func (p *Permissions) UnmarshalJSON(b []byte) error {
	type alias Permissions
	a := alias(DefaultPermissions())
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*p = Permissions(a)
	return nil
}

func (w Workspace) flags() map[string]bool {
	return map[string]bool{
		"models":    w.Models,
		"knowledge": w.Knowledge,
		"prompts":   w.Prompts,
		"tools":     w.Tools,
	}
}

func (s Sharing) flags() map[string]bool {
	return map[string]bool{
		"public_models":    s.PublicModels,
		"public_knowledge": s.PublicKnowledge,
		"public_prompts":   s.PublicPrompts,
		"public_tools":     s.PublicTools,
	}
}

func (c Chat) flags() map[string]bool {
	return map[string]bool{
		"controls":           c.Controls,
		"system_prompt":      c.SystemPrompt,
		"file_upload":        c.FileUpload,
		"delete":             c.Delete,
		"edit":               c.Edit,
		"share":              c.Share,
		"export":             c.Export,
		"stt":                c.STT,
		"tts":                c.TTS,
		"call":               c.Call,
		"multiple_models":    c.MultipleModels,
		"temporary":          c.Temporary,
		"temporary_enforced": c.TemporaryEnforced,
	}
}

func (f Features) flags() map[string]bool {
	return map[string]bool{
		"direct_tool_servers": f.DirectToolServers,
		"web_search":          f.WebSearch,
		"image_generation":    f.ImageGeneration,
		"code_interpreter":    f.CodeInterpreter,
		"notes":               f.Notes,
	}
}

func (p Permissions) category(name string) map[string]bool {
	switch name {
	case "workspace":
		return p.Workspace.flags()
	case "sharing":
		return p.Sharing.flags()
	case "chat":
		return p.Chat.flags()
	case "features":
		return p.Features.flags()
	}
	return nil
}

// Flags flattens the set into "category.key" entries.
func (p Permissions) Flags() map[string]bool {
	flags := make(map[string]bool)
	for _, name := range []string{"workspace", "sharing", "chat", "features"} {
		for key, v := range p.category(name) {
			flags[name+"."+key] = v
		}
	}
	return flags
}

// Has reports whether a dotted key such as "features.direct_tool_servers" is granted.
// Unknown keys are never granted.
func (p Permissions) Has(key string) bool {
	name, flag, ok := strings.Cut(strings.TrimSpace(key), ".")
	if !ok {
		return false
	}
	return p.category(name)[flag]
}

// Effective overlays a role override on the global layer. A stored override is
// complete, so it wins for every key.
func Effective(global Permissions, override *Permissions) Permissions {
	if override != nil {
		return *override
	}
	return global
}

// GlobalPatch replaces only the categories that are present.
type GlobalPatch struct {
	Workspace *Workspace `json:"workspace,omitempty"`
	Sharing   *Sharing   `json:"sharing,omitempty"`
	Chat      *Chat      `json:"chat,omitempty"`
	Features  *Features  `json:"features,omitempty"`
}

func (g GlobalPatch) ApplyTo(p Permissions) Permissions {
	if g.Workspace != nil {
		p.Workspace = *g.Workspace
	}
	if g.Sharing != nil {
		p.Sharing = *g.Sharing
	}
	if g.Chat != nil {
		p.Chat = *g.Chat
	}
	if g.Features != nil {
		p.Features = *g.Features
	}
	return p
}

// BulkUpdate is the body of the role-based update. A present roles key replaces
// the stored map wholesale, and an explicit null clears it. Global is applied
// per category.
type BulkUpdate struct {
	Roles  map[string]Permissions `json:"roles,omitempty"`
	Global *GlobalPatch           `json:"global,omitempty"`
}

func (b *BulkUpdate) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	var out BulkUpdate
	if rolesRaw, ok := raw["roles"]; ok {
		out.Roles = map[string]Permissions{}
		if string(rolesRaw) != "null" {
			if err := json.Unmarshal(rolesRaw, &out.Roles); err != nil {
				return err
			}
			if out.Roles == nil {
				out.Roles = map[string]Permissions{}
			}
		}
	}
	if globalRaw, ok := raw["global"]; ok && string(globalRaw) != "null" {
		out.Global = &GlobalPatch{}
		if err := json.Unmarshal(globalRaw, out.Global); err != nil {
			return err
		}
	}

	*b = out
	return nil
}

// Config is the whole stored permission configuration. It serializes flat,
// with the global categories at the top level next to "roles".
type Config struct {
	Global Permissions
	Roles  map[string]Permissions
}

func DefaultConfig() Config {
	return Config{
		Global: DefaultPermissions(),
		Roles:  map[string]Permissions{},
	}
}

func (c Config) Clone() Config {
	roles := make(map[string]Permissions, len(c.Roles))
	for name, p := range c.Roles {
		roles[name] = p
	}
	return Config{Global: c.Global, Roles: roles}
}

type configJSON struct {
	Permissions
	Roles map[string]Permissions `json:"roles"`
}

func (c Config) MarshalJSON() ([]byte, error) {
	roles := c.Roles
	if roles == nil {
		roles = map[string]Permissions{}
	}
	return json.Marshal(configJSON{Permissions: c.Global, Roles: roles})
}

func (c *Config) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	global := DefaultPermissions()
	rolesRaw, hasRoles := raw["roles"]
	delete(raw, "roles")

	rest, err := json.Marshal(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(rest, &global); err != nil {
		return err
	}

	roles := map[string]Permissions{}
	if hasRoles && string(rolesRaw) != "null" {
		if err := json.Unmarshal(rolesRaw, &roles); err != nil {
			return err
		}
	}

	c.Global = global
	c.Roles = roles
	return nil
}
