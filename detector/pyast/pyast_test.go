package pyast

import (
	"context"
	"errors"
	"testing"
)

const sampleSource = `import autogen

assistant = autogen.AssistantAgent(
    name="research_assistant",
    system_message="""You are a helpful research assistant.""",
    llm_config={"model": "gpt-4", "temperature": 0.7},
)

user_proxy = UserProxyAgent("admin", max_consecutive_auto_reply=10)

chat = GroupChat(agents=[assistant, user_proxy], max_round=5)

user_proxy.initiate_chat(assistant, message="Start")
`

func findCall(t *testing.T, calls []Call, name string) Call {
	t.Helper()
	for _, c := range calls {
		if c.Func == name {
			return c
		}
	}
	t.Fatalf("call %q not found in %d calls", name, len(calls))
	return Call{}
}

func TestParseCalls_Keywords(t *testing.T) {
	calls, err := ParseCalls(context.Background(), sampleSource)
	if err != nil {
		t.Fatalf("ParseCalls: %v", err)
	}

	assistant := findCall(t, calls, "AssistantAgent")
	if got := assistant.KeywordString("name"); got != "research_assistant" {
		t.Errorf("name = %q", got)
	}
	if got := assistant.KeywordString("system_message"); got != "You are a helpful research assistant." {
		t.Errorf("system_message = %q", got)
	}
	if assistant.Line != 3 {
		t.Errorf("line = %d, want 3", assistant.Line)
	}

	cfg, ok := assistant.Keywords["llm_config"]
	if !ok || cfg.Kind != KindDict {
		t.Fatalf("llm_config missing or not a dict: %+v", cfg)
	}
	if model := cfg.Dict["model"]; model.Kind != KindString || model.Str != "gpt-4" {
		t.Errorf("llm_config model = %+v", model)
	}
	if temp := cfg.Dict["temperature"]; temp.Kind != KindNumber || temp.Num != 0.7 {
		t.Errorf("llm_config temperature = %+v", temp)
	}
}

func TestParseCalls_PositionalAndAttribute(t *testing.T) {
	calls, err := ParseCalls(context.Background(), sampleSource)
	if err != nil {
		t.Fatalf("ParseCalls: %v", err)
	}

	proxy := findCall(t, calls, "UserProxyAgent")
	if name, ok := proxy.StringArg(); !ok || name != "admin" {
		t.Errorf("positional string arg = %q, %v", name, ok)
	}
	if v := proxy.Keywords["max_consecutive_auto_reply"]; v.Kind != KindNumber || v.Num != 10 {
		t.Errorf("max_consecutive_auto_reply = %+v", v)
	}

	chat := findCall(t, calls, "initiate_chat")
	if chat.Receiver != "user_proxy" {
		t.Errorf("receiver = %q", chat.Receiver)
	}
	if len(chat.Args) == 0 || chat.Args[0].Kind != KindIdent || chat.Args[0].Str != "assistant" {
		t.Errorf("first arg = %+v", chat.Args)
	}
}

func TestParseCalls_ListArgument(t *testing.T) {
	calls, err := ParseCalls(context.Background(), sampleSource)
	if err != nil {
		t.Fatalf("ParseCalls: %v", err)
	}

	gc := findCall(t, calls, "GroupChat")
	agents, ok := gc.Keywords["agents"]
	if !ok || agents.Kind != KindList {
		t.Fatalf("agents = %+v", agents)
	}
	if len(agents.List) != 2 {
		t.Errorf("agents list length = %d, want 2", len(agents.List))
	}
}

func TestParseCalls_MalformedSource(t *testing.T) {
	_, err := ParseCalls(context.Background(), "def broken(:\n    x = (((\n")
	if !errors.Is(err, ErrParse) {
		t.Errorf("err = %v, want ErrParse", err)
	}
}

func TestStringContent(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`"hello"`, "hello"},
		{`'hello'`, "hello"},
		{`"""multi line"""`, "multi line"},
		{`f"formatted {x}"`, "formatted {x}"},
		{`r'raw\path'`, `raw\path`},
	}
	for _, tc := range tests {
		if got := stringContent(tc.raw); got != tc.want {
			t.Errorf("stringContent(%q) = %q, want %q", tc.raw, got, tc.want)
		}
	}
}
