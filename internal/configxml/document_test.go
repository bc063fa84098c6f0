package configxml

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const freestyleJob = `<?xml version='1.1' encoding='UTF-8'?>
<project>
  <description>Nightly &amp; weekly</description>
  <keepDependencies>false</keepDependencies>
  <properties>
    <hudson.model.ParametersDefinitionProperty>
      <parameterDefinitions>
        <hudson.model.StringParameterDefinition>
          <name>BRANCH</name>
          <description>branch to build</description>
          <defaultValue>main</defaultValue>
          <trim>false</trim>
        </hudson.model.StringParameterDefinition>
        <hudson.model.StringParameterDefinition>
          <name>TARGET</name>
          <defaultValue>staging</defaultValue>
        </hudson.model.StringParameterDefinition>
      </parameterDefinitions>
    </hudson.model.ParametersDefinitionProperty>
  </properties>
  <scm class="hudson.scm.NullSCM"/>
  <!-- build steps -->
  <builders>
    <hudson.tasks.Shell>
      <command>make &lt;all&gt;</command>
    </hudson.tasks.Shell>
  </builders>
</project>`

const bareJob = `<project>
  <properties/>
  <builders/>
</project>`

func mustParse(t *testing.T, raw string) *Document {
	t.Helper()
	doc, err := Parse(raw)
	require.NoError(t, err)
	return doc
}

func mustString(t *testing.T, doc *Document) string {
	t.Helper()
	out, err := doc.String()
	require.NoError(t, err)
	return out
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n"},
		{"mismatched", "<project><properties></project>"},
		{"unclosed", "<project><properties>"},
		{"two roots", "<a/><b/>"},
		{"text outside root", "hello <a/>"},
		{"not xml", "{\"json\": true}"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Parse(tc.raw)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestParse_XML11Declaration(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	assert.Equal(t, "project", doc.Root())

	out := mustString(t, doc)
	assert.True(t, strings.HasPrefix(out, "<?xml version='1.1' encoding='UTF-8'?>\n<project>"))
}

func TestRoundTripUnchanged(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	out := mustString(t, doc)

	again := mustParse(t, out)
	assert.Equal(t, out, mustString(t, again))

	before, err := doc.Parameters()
	require.NoError(t, err)
	after, err := again.Parameters()
	require.NoError(t, err)
	assert.Equal(t, before, after)

	assert.Contains(t, out, "<description>Nightly &amp; weekly</description>")
	assert.Contains(t, out, "<command>make &lt;all&gt;</command>")
	assert.Contains(t, out, `<scm class="hudson.scm.NullSCM"/>`)
	assert.Contains(t, out, "<!-- build steps -->")
}

const crlfJob = "<project>\n" +
	"  <properties>\n" +
	"    <hudson.model.ParametersDefinitionProperty>\n" +
	"      <parameterDefinitions>\n" +
	"        <hudson.model.StringParameterDefinition>\n" +
	"          <name>MSG</name>\n" +
	"          <defaultValue>a&#xd;\nb</defaultValue>\n" +
	"        </hudson.model.StringParameterDefinition>\n" +
	"      </parameterDefinitions>\n" +
	"    </hudson.model.ParametersDefinitionProperty>\n" +
	"  </properties>\n" +
	"  <builders>\n" +
	"    <hudson.tasks.Shell>\n" +
	"      <command>echo one&#xd;\necho two</command>\n" +
	"    </hudson.tasks.Shell>\n" +
	"  </builders>\n" +
	"</project>"

func TestRoundTripKeepsCarriageReturns(t *testing.T) {
	doc := mustParse(t, crlfJob)
	p, ok, err := doc.FindParameter("MSG")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a\r\nb", p.DefaultValue)

	out := mustString(t, doc)
	assert.Contains(t, out, "<defaultValue>a&#xD;\nb</defaultValue>")
	assert.Contains(t, out, "<command>echo one&#xD;\necho two</command>")
	assert.NotContains(t, out, "\r")

	again := mustParse(t, out)
	p, _, err = again.FindParameter("MSG")
	require.NoError(t, err)
	assert.Equal(t, "a\r\nb", p.DefaultValue)
	assert.Equal(t, out, mustString(t, again))

	// an edit elsewhere leaves the shell step alone
	_, err = again.UpdateParameter("MSG", "plain")
	require.NoError(t, err)
	assert.Contains(t, mustString(t, again), "<command>echo one&#xD;\necho two</command>")
}

const nestedPropertiesJob = `<project>
  <actions>
    <some.Action>
      <properties/>
    </some.Action>
  </actions>
  <properties/>
</project>`

func TestAddParameter_PrefersRootProperties(t *testing.T) {
	doc := mustParse(t, nestedPropertiesJob)
	require.NoError(t, doc.AddParameter("X", "1"))

	out := mustString(t, doc)
	assert.Contains(t, out, "<some.Action>\n      <properties/>\n    </some.Action>")

	actions := doc.firstElement(0, "actions")
	require.GreaterOrEqual(t, actions, 0)
	assert.Empty(t, doc.elements(actions, ParametersPropertyTag))

	root := doc.firstChildElement(0, "")
	props := doc.firstChildElement(root, PropertiesTag)
	assert.Len(t, doc.elements(props, ParametersPropertyTag), 1)
}

func TestAddParameter_FallsBackToNestedProperties(t *testing.T) {
	doc := mustParse(t, `<project><actions><some.Action><properties/></some.Action></actions></project>`)
	require.NoError(t, doc.AddParameter("X", "1"))
	values, err := doc.ParameterValues()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"X": "1"}, values)
}

func TestZeroDocument(t *testing.T) {
	var doc *Document
	_, _, err := doc.FindParameter("X")
	assert.ErrorIs(t, err, ErrMalformedDocument)
	assert.ErrorIs(t, doc.AddParameter("X", "1"), ErrMalformedDocument)
	_, err = doc.UpdateParameter("X", "1")
	assert.ErrorIs(t, err, ErrMalformedDocument)
	_, err = doc.DeleteParameter("X")
	assert.ErrorIs(t, err, ErrMalformedDocument)
	_, err = doc.String()
	assert.ErrorIs(t, err, ErrMalformedDocument)

	_, err = (&Document{}).ParameterValues()
	assert.ErrorIs(t, err, ErrMalformedDocument)
}

func TestFindParameter(t *testing.T) {
	doc := mustParse(t, freestyleJob)

	p, ok, err := doc.FindParameter("BRANCH")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Parameter{Name: "BRANCH", DefaultValue: "main", Description: "branch to build"}, p)

	_, ok, err = doc.FindParameter("MISSING")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddParameter(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	require.NoError(t, doc.AddParameter("VERSION", "1.2.3"))

	p, ok, err := doc.FindParameter("VERSION")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "1.2.3", p.DefaultValue)

	params, err := doc.Parameters()
	require.NoError(t, err)
	require.Len(t, params, 3)
	assert.Equal(t, "VERSION", params[2].Name)

	// survives serialization
	again := mustParse(t, mustString(t, doc))
	p, ok, err = again.FindParameter("VERSION")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "1.2.3", p.DefaultValue)
}

func TestAddParameter_CreatesDefinitionsSection(t *testing.T) {
	doc := mustParse(t, bareJob)
	require.NoError(t, doc.AddParameter("P", "1"))

	out := mustString(t, doc)
	assert.Contains(t, out, "<properties><hudson.model.ParametersDefinitionProperty><parameterDefinitions>"+
		"<hudson.model.StringParameterDefinition><name>P</name><defaultValue>1</defaultValue><trim>false</trim>"+
		"</hudson.model.StringParameterDefinition></parameterDefinitions></hudson.model.ParametersDefinitionProperty></properties>")

	values, err := doc.ParameterValues()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"P": "1"}, values)
}

func TestAddParameter_MissingSection(t *testing.T) {
	doc := mustParse(t, "<project><builders/></project>")
	assert.ErrorIs(t, doc.AddParameter("P", "1"), ErrMissingSection)
	_, err := doc.UpdateParameter("P", "1")
	assert.ErrorIs(t, err, ErrMissingSection)
	_, err = doc.DeleteParameter("P")
	assert.ErrorIs(t, err, ErrMissingSection)
}

func TestAddParameter_AllowsDuplicates(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	require.NoError(t, doc.AddParameter("BRANCH", "release"))

	params, err := doc.Parameters()
	require.NoError(t, err)
	assert.Len(t, params, 3)

	// lookup still returns the first declaration, the map keeps the last
	p, _, err := doc.FindParameter("BRANCH")
	require.NoError(t, err)
	assert.Equal(t, "main", p.DefaultValue)
	values, err := doc.ParameterValues()
	require.NoError(t, err)
	assert.Equal(t, "release", values["BRANCH"])
}

func TestAddParameterStrict(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	assert.ErrorIs(t, doc.AddParameterStrict("BRANCH", "release"), ErrDuplicateParameter)
	assert.NoError(t, doc.AddParameterStrict("NEW", "x"))
}

func TestUpdateParameter(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	found, err := doc.UpdateParameter("TARGET", "prod & dr")
	require.NoError(t, err)
	assert.True(t, found)

	p, _, err := doc.FindParameter("TARGET")
	require.NoError(t, err)
	assert.Equal(t, "prod & dr", p.DefaultValue)
	assert.Contains(t, mustString(t, doc), "<defaultValue>prod &amp; dr</defaultValue>")
}

func TestUpdateParameter_MissingIsNoop(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	before := mustString(t, doc)

	found, err := doc.UpdateParameter("NOPE", "x")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, mustString(t, doc))
}

func TestDeleteParameter(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	found, err := doc.DeleteParameter("BRANCH")
	require.NoError(t, err)
	assert.True(t, found)

	_, ok, err := doc.FindParameter("BRANCH")
	require.NoError(t, err)
	assert.False(t, ok)

	p, ok, err := doc.FindParameter("TARGET")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "staging", p.DefaultValue)

	out := mustString(t, doc)
	assert.NotContains(t, out, "BRANCH")
	again := mustParse(t, out)
	values, err := again.ParameterValues()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"TARGET": "staging"}, values)
}

func TestDeleteParameter_Missing(t *testing.T) {
	doc := mustParse(t, freestyleJob)
	before := mustString(t, doc)
	found, err := doc.DeleteParameter("NOPE")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, before, mustString(t, doc))
}

func TestAddUpdateRoundTrip(t *testing.T) {
	doc := mustParse(t, bareJob)
	require.NoError(t, doc.AddParameter("P", "1"))
	found, err := doc.UpdateParameter("P", "2")
	require.NoError(t, err)
	require.True(t, found)

	again := mustParse(t, mustString(t, doc))
	params, err := again.Parameters()
	require.NoError(t, err)
	require.Len(t, params, 1)
	values, err := again.ParameterValues()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"P": "2"}, values)
}
