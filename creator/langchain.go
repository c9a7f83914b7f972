// ABOUTME: Creator for the langchain target: a langgraph StateGraph wired from the agency chart.
// ABOUTME: Agent modules build a routing chain around the model expression from the model table.
package creator

import (
	"fmt"
	"strings"

	"github.com/2389-research/swarmbase/product"
	"github.com/2389-research/swarmbase/scaffold"
)

// LangchainGraph generates projects for langchain/langgraph.
type LangchainGraph struct {
	writer scaffold.Writer
}

var _ Creator = (*LangchainGraph)(nil)

func (c *LangchainGraph) Target() Target { return Langchain }

const langchainPreamble = `import functools
import operator
from typing import Sequence, TypedDict, Annotated
from langchain_core.messages import BaseMessage
from langgraph.graph import END, StateGraph, START
from langchain_core.messages import HumanMessage

`

const langchainState = `

# The agent state is the input to each node in the graph
class AgentState(TypedDict):
    # The annotation tells the graph that new messages will always
    # be added to the current states
    messages: Annotated[Sequence[BaseMessage], operator.add]
    # The 'next' field indicates where to route to next
    next: str

workflow = StateGraph(AgentState)
`

// SwarmSource renders the graph module. The graph is entered at the manager,
// so a swarm without one is rejected.
func (c *LangchainGraph) SwarmSource(s *product.Swarm) (string, error) {
	manager, err := s.ManagerAgent()
	if err != nil {
		return "", err
	}
	if manager == nil {
		return "", fmt.Errorf("swarm %s: %w", s.InstanceName(), ErrNoManager)
	}

	chartLiteral, err := chartDict(s)
	if err != nil {
		return "", err
	}

	agents := s.Agents()
	imports := make([]string, 0, len(agents))
	nodes := make([]string, 0, len(agents))
	for _, a := range agents {
		imports = append(imports, fmt.Sprintf("from agents.%s import %s", a.InstanceName(), a.InstanceName()))
		nodes = append(nodes, fmt.Sprintf("workflow.add_node(\"%s\", %s)", displayName(a), a.InstanceName()))
	}

	m := manager.InstanceName()
	var b strings.Builder
	b.WriteString(langchainPreamble)
	b.WriteString(strings.Join(imports, "\n"))
	b.WriteString(langchainState)
	b.WriteString(strings.Join(nodes, "\n"))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "agency_chart = %s\n", chartLiteral)
	b.WriteString(`
for source, targets in agency_chart.items():
    print(source, targets)
    for target in targets:
        workflow.add_edge(target, source)

    conditional_map = {k: k for k in targets}
`)
	fmt.Fprintf(&b, "    if source == '%s':\n", m)
	b.WriteString(`        conditional_map["FINISH"] = END
    print(conditional_map)
    workflow.add_conditional_edges(source, lambda x: x["next"], conditional_map)
`)
	fmt.Fprintf(&b, "workflow.add_edge(START, '%s')\n", m)
	fmt.Fprintf(&b, "%s = workflow.compile()\n", s.InstanceName())
	return b.String(), nil
}

// chartDict renders the chart as a dict-of-sets literal keyed by instance
// name: {'a': {'b', 'c'}}. An empty target set renders as set().
func chartDict(s *product.Swarm) (string, error) {
	entries := make([]string, 0, s.Chart.Len())
	for _, id := range s.Chart.Agents() {
		src, err := lookupAgent(s, id)
		if err != nil {
			return "", err
		}
		targets := s.Chart.Targets(id)
		names := make([]string, 0, len(targets))
		for _, t := range targets {
			dst, err := lookupAgent(s, t)
			if err != nil {
				return "", err
			}
			names = append(names, "'"+dst.InstanceName()+"'")
		}
		set := "set()"
		if len(names) > 0 {
			set = "{" + strings.Join(names, ", ") + "}"
		}
		entries = append(entries, fmt.Sprintf("'%s': %s", src.InstanceName(), set))
	}
	return "{" + strings.Join(entries, ", ") + "}", nil
}

// AgentSource renders a routing node function around the agent's model.
func (c *LangchainGraph) AgentSource(a *product.Agent) (string, error) {
	model, err := LookupModel(a.Model())
	if err != nil {
		return "", fmt.Errorf("agent %s: %w", a.InstanceName(), err)
	}
	inst := a.InstanceName()
	return fmt.Sprintf(`
from langchain_core.prompts import ChatPromptTemplate, MessagesPlaceholder
from langchain_openai import ChatOpenAI
from pydantic import BaseModel
from typing import Literal

class routeResponse(BaseModel):
    next: Literal[*options]

system_prompt = """%s"""

prompt = ChatPromptTemplate.from_messages(
[
    ("system", system_prompt),
    MessagesPlaceholder(variable_name="messages"),
]
)

model = %s

def %s(state):
    %s_chain = (
        prompt
        | model.with_structured_output(routeResponse)
    )
    return %s_chain.invoke(state)


`, a.Instructions, model.Expression(), inst, inst, inst), nil
}

// ToolSource is empty: langchain tools are not generated yet.
func (c *LangchainGraph) ToolSource(*product.Tool) (string, error) {
	return "", nil
}

func (c *LangchainGraph) mainSource(s *product.Swarm) string {
	inst := s.InstanceName()
	return fmt.Sprintf(`from %s import %s

for s in %s.stream(
    {"messages": [HumanMessage(content="Write a brief research report on pikas. Ask researcher to tell Coder to write hello pika in Python.")]},
    {"recursion_limit": 100},
):
    if "__end__" not in s:
        print(s)
        print("----")
`, inst, inst, inst)
}

// Agent packages are named after the instance.
func (c *LangchainGraph) agentPackage(a *product.Agent) string { return a.InstanceName() }

// CreateSwarmFiles writes the project under basePath.
func (c *LangchainGraph) CreateSwarmFiles(s *product.Swarm, basePath string) error {
	return writeTree(c, c.writer, s, basePath)
}
