package consult

import (
	"fmt"
	"strings"

	"github.com/hzhao/ConsultAPI/internal/config"
	"github.com/hzhao/ConsultAPI/internal/domain/chatModel"
)

// SystemPrompt frames every llm call. It never varies per turn - all
// turn-specific material travels in the instruction payload instead.
const SystemPrompt = `你是"小艾"，一位温柔专业的中医诊疗助手。你精通《伤寒论》，正在为患者进行问诊。

【核心原则】
1. **只使用知识库内容**：你的所有诊断和建议必须基于提供的知识库（伤寒论相关内容）
2. **白话文交流**：用通俗易懂的大白话和患者沟通，不要用太专业的术语
3. **跳跃式问答**：根据患者的回答，智能判断下一个问题，不需要按固定顺序问
4. **温柔亲切**：语气要温柔，多用"您"、"呢"、"呀"，让患者感觉温暖

【问诊策略】
- 第一轮先确认主诉："嗯嗯，您说头痛是吗？具体是哪个地方疼呢？"
- 之后围绕发热、出汗、恶寒、身体疼痛等鉴别症状跳跃提问
- 每次回复只问1-2个问题，不要一次问太多

【诊断格式】
当准备做诊断时，请按以下格式输出：

📋 **诊断结果**
（用大白话说明是什么证型，比如"太阳病证"、"伤寒表证"等）

📖 **原文依据**
（从知识库中引用相关原文，如果有）

💊 **建议方剂**
（从知识库中提取的方剂，如果有）

💡 **温馨提示**
（生活建议和注意事项）

【重要提醒】
- 如果知识库中没有相关信息，诚实地说："知识库里暂时没有这方面的内容呢~"
- 不要自己编造诊断和方剂`

func formatSignals(signals []string) string {
	if len(signals) == 0 {
		return "暂无"
	}
	lines := make([]string, len(signals))
	for i, s := range signals {
		lines[i] = "- " + s
	}
	return strings.Join(lines, "\n")
}

// buildDiagnoseInstruction carries only the accumulated signals and the
// current message - once the threshold is crossed, grounding snippets would
// just dilute the diagnosis context.
func buildDiagnoseInstruction(signals []string, message string) string {
	return fmt.Sprintf(`【已收集的症状】
%s

【当前问题】
%s

请根据知识库内容和已收集的症状，做出诊断判断。`, formatSignals(signals), message)
}

// buildGatherInstruction assembles the full grounding payload for a gathering
// turn: retrieved knowledge, signals so far, a window of recent dialogue and
// the patient's current message.
func buildGatherInstruction(grounding string, signals []string, history []chatModel.Turn, message string) string {
	var summary strings.Builder
	window := history
	if len(window) > config.HistoryWindowTurns {
		window = window[len(window)-config.HistoryWindowTurns:]
	}
	for _, turn := range window {
		speaker := "小艾"
		if turn.Role == chatModel.RoleUser {
			speaker = "您"
		}
		summary.WriteString(speaker)
		summary.WriteString("：")
		summary.WriteString(turn.Content)
		summary.WriteString("\n")
	}

	return fmt.Sprintf(`【知识库内容】
%s

【已收集的症状】
%s

【对话历史】
%s
【当前问题】
%s

请根据知识库内容和对话历史，判断下一步该问什么问题，用大白话询问患者。`, grounding, formatSignals(signals), summary.String(), message)
}
