package nmap

import (
	"reflect"
	"testing"
)

const sampleReport = `<?xml version="1.0"?>
<nmaprun scanner="nmap" version="7.94">
  <host>
    <address addr="10.0.0.5" addrtype="ipv4"/>
    <hostnames>
      <hostname name="web01" type="user"/>
      <hostname name="web01.internal" type="PTR"/>
    </hostnames>
    <ports>
      <extraports state="closed" count="998"/>
      <port protocol="tcp" portid="443">
        <state state="open"/>
        <script id="ssl-enum-ciphers" output="TLSv1.0 and weak ciphers enabled"/>
      </port>
      <port protocol="tcp" portid="8443">
        <state state="open"/>
      </port>
    </ports>
  </host>
</nmaprun>`

func mustParse(t *testing.T, data string) *Node {
	t.Helper()
	root, err := Parse([]byte(data))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return root
}

func TestNodeAttr(t *testing.T) {
	root := mustParse(t, sampleReport)

	tests := []struct {
		name      string
		node      *Node
		attr      string
		want      string
		wantFound bool
	}{
		{"present", root, "scanner", "nmap", true},
		{"second attribute", root, "version", "7.94", true},
		{"absent", root, "args", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := tt.node.Attr(tt.attr)
			if got != tt.want || found != tt.wantFound {
				t.Errorf("Attr(%q) = (%q, %v), want (%q, %v)", tt.attr, got, found, tt.want, tt.wantFound)
			}
		})
	}

	if got := root.AttrDefault("args", "n/a"); got != "n/a" {
		t.Errorf("AttrDefault() = %q, want %q", got, "n/a")
	}
	if got := root.AttrDefault("scanner", "n/a"); got != "nmap" {
		t.Errorf("AttrDefault() = %q, want %q", got, "nmap")
	}
}

func TestNodeFirst(t *testing.T) {
	root := mustParse(t, sampleReport)
	host := root.First("host")
	if host == nil {
		t.Fatal("First(host) = nil, want node")
	}

	hostname := host.First("hostnames/hostname")
	if hostname == nil {
		t.Fatal("First(hostnames/hostname) = nil, want node")
	}
	if got := hostname.AttrDefault("name", ""); got != "web01" {
		t.Errorf("first hostname name = %q, want %q", got, "web01")
	}

	if got := host.First("hostnames/missing"); got != nil {
		t.Errorf("First(hostnames/missing) = %v, want nil", got)
	}
	if got := host.First("nosuch/hostname"); got != nil {
		t.Errorf("First(nosuch/hostname) = %v, want nil", got)
	}
}

// A path query must keep searching sibling branches when the first
// branch dead-ends partway through the path.
func TestNodeFirstBacktracks(t *testing.T) {
	root := mustParse(t, `<root>
  <outer><other/></outer>
  <outer><inner name="second"/></outer>
</root>`)

	inner := root.First("outer/inner")
	if inner == nil {
		t.Fatal("First(outer/inner) = nil, want node from second branch")
	}
	if got := inner.AttrDefault("name", ""); got != "second" {
		t.Errorf("matched node name = %q, want %q", got, "second")
	}
}

func TestNodeDescendants(t *testing.T) {
	root := mustParse(t, sampleReport)
	host := root.First("host")
	if host == nil {
		t.Fatal("First(host) = nil")
	}

	ports := host.Descendants("port")
	var ids []string
	for _, p := range ports {
		ids = append(ids, p.AttrDefault("portid", "unknown"))
	}
	want := []string{"443", "8443"}
	if !reflect.DeepEqual(ids, want) {
		t.Errorf("Descendants(port) ids = %v, want %v", ids, want)
	}
}

func TestNodeDescendantsIncludesSelf(t *testing.T) {
	root := mustParse(t, `<port portid="22"><port portid="nested"/></port>`)
	got := root.Descendants("port")
	if len(got) != 2 {
		t.Fatalf("Descendants(port) returned %d nodes, want 2", len(got))
	}
	if got[0].AttrDefault("portid", "") != "22" || got[1].AttrDefault("portid", "") != "nested" {
		t.Errorf("Descendants(port) order wrong: %q then %q",
			got[0].AttrDefault("portid", ""), got[1].AttrDefault("portid", ""))
	}
}

func TestNodeChildrenNamed(t *testing.T) {
	root := mustParse(t, sampleReport)
	host := root.First("host")
	if host == nil {
		t.Fatal("First(host) = nil")
	}

	hostnames := host.First("hostnames")
	if hostnames == nil {
		t.Fatal("First(hostnames) = nil")
	}
	names := hostnames.ChildrenNamed("hostname")
	if len(names) != 2 {
		t.Fatalf("ChildrenNamed(hostname) returned %d, want 2", len(names))
	}

	// Deep port elements are not direct children of host.
	if direct := host.ChildrenNamed("port"); len(direct) != 0 {
		t.Errorf("ChildrenNamed(port) on host returned %d, want 0", len(direct))
	}
}
