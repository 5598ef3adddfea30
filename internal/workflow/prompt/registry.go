package prompt

import (
	"context"
	"embed"
	"fmt"
	"strings"
	"sync"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
)

//go:embed templates/*.txt
var templatesFS embed.FS

type PromptID string

const (
	PromptChatV1       PromptID = "chat_v1"
	PromptArticleGenV1 PromptID = "article_gen_v1"
	PromptRegenerateV1 PromptID = "regenerate_v1"

	PromptValidatorStructureV1   PromptID = "validator_structure_v1"
	PromptValidatorLanguageV1    PromptID = "validator_language_v1"
	PromptValidatorGrammarV1     PromptID = "validator_grammar_v1"
	PromptValidatorLengthV1      PromptID = "validator_length_v1"
	PromptValidatorMathV1        PromptID = "validator_math_v1"
	PromptValidatorDepthV1       PromptID = "validator_depth_v1"
	PromptValidatorReadabilityV1 PromptID = "validator_readability_v1"
	PromptValidatorCodeV1        PromptID = "validator_code_v1"
)

// ValidatorPromptID 按校验节点名返回对应的提示词 ID
func ValidatorPromptID(stage string) (PromptID, error) {
	switch stage {
	case "structure":
		return PromptValidatorStructureV1, nil
	case "language":
		return PromptValidatorLanguageV1, nil
	case "grammar":
		return PromptValidatorGrammarV1, nil
	case "length":
		return PromptValidatorLengthV1, nil
	case "math":
		return PromptValidatorMathV1, nil
	case "depth":
		return PromptValidatorDepthV1, nil
	case "readability":
		return PromptValidatorReadabilityV1, nil
	case "code":
		return PromptValidatorCodeV1, nil
	default:
		return "", fmt.Errorf("no validator prompt for stage: %s", stage)
	}
}

type cached struct {
	system string
	user   einoprompt.ChatTemplate
}

type Registry struct {
	mu    sync.RWMutex
	cache map[PromptID]*cached
}

func NewRegistry() *Registry {
	return &Registry{
		cache: make(map[PromptID]*cached),
	}
}

// Format 渲染提示词为消息序列。
// system 文件原样使用（校验提示词内嵌 JSON 输出示例，含字面量花括号，不参与变量替换）；
// user 文件按 FString 模板渲染。
func (r *Registry) Format(ctx context.Context, id PromptID, vars map[string]any) ([]*schema.Message, error) {
	c, err := r.load(id)
	if err != nil {
		return nil, err
	}

	msgs := []*schema.Message{schema.SystemMessage(c.system)}
	if c.user != nil {
		userMsgs, err := c.user.Format(ctx, vars)
		if err != nil {
			return nil, fmt.Errorf("failed to format prompt %s: %w", id, err)
		}
		msgs = append(msgs, userMsgs...)
	}
	return msgs, nil
}

// SystemText 返回提示词的 system 部分原文（聊天场景自行拼接历史消息）
func (r *Registry) SystemText(id PromptID) (string, error) {
	c, err := r.load(id)
	if err != nil {
		return "", err
	}
	return c.system, nil
}

func (r *Registry) load(id PromptID) (*cached, error) {
	if r == nil {
		return nil, fmt.Errorf("prompt registry is nil")
	}

	r.mu.RLock()
	if c, ok := r.cache[id]; ok {
		r.mu.RUnlock()
		return c, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.cache[id]; ok {
		return c, nil
	}

	systemPath, userPath, err := resolvePromptFiles(id)
	if err != nil {
		return nil, err
	}
	system, err := readEmbeddedText(systemPath)
	if err != nil {
		return nil, err
	}

	c := &cached{system: system}
	if userPath != "" {
		user, err := readEmbeddedText(userPath)
		if err != nil {
			return nil, err
		}
		c.user = einoprompt.FromMessages(
			schema.FString,
			schema.UserMessage(user),
		)
	}

	r.cache[id] = c
	return c, nil
}

func resolvePromptFiles(id PromptID) (systemFile string, userFile string, err error) {
	switch id {
	case PromptChatV1:
		return "templates/chat_v1.system.txt", "", nil
	case PromptArticleGenV1:
		return "templates/article_gen_v1.system.txt", "templates/article_gen_v1.user.txt", nil
	case PromptRegenerateV1:
		// 重新生成与初次生成共用 system 提示词
		return "templates/article_gen_v1.system.txt", "templates/regenerate_v1.user.txt", nil
	case PromptValidatorStructureV1:
		return "templates/validator_structure_v1.system.txt", "templates/validator_context_v1.user.txt", nil
	case PromptValidatorLanguageV1:
		return "templates/validator_language_v1.system.txt", "templates/validator_context_v1.user.txt", nil
	case PromptValidatorGrammarV1:
		return "templates/validator_grammar_v1.system.txt", "templates/validator_context_v1.user.txt", nil
	case PromptValidatorLengthV1:
		return "templates/validator_length_v1.system.txt", "templates/validator_context_v1.user.txt", nil
	case PromptValidatorMathV1:
		return "templates/validator_math_v1.system.txt", "templates/validator_context_v1.user.txt", nil
	case PromptValidatorDepthV1:
		return "templates/validator_depth_v1.system.txt", "templates/validator_context_v1.user.txt", nil
	case PromptValidatorReadabilityV1:
		return "templates/validator_readability_v1.system.txt", "templates/validator_context_v1.user.txt", nil
	case PromptValidatorCodeV1:
		return "templates/validator_code_v1.system.txt", "templates/validator_context_v1.user.txt", nil
	default:
		return "", "", fmt.Errorf("unknown prompt id: %s", id)
	}
}

func readEmbeddedText(path string) (string, error) {
	b, err := templatesFS.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
