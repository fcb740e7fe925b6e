package browser

// collectElementsJS снимает с каждого элемента тег, textContent, атрибуты и
// видимость. Порядок результата совпадает с порядком документа.
const collectElementsJS = `
	(elements) => elements.map(el => {
		const rect = el.getBoundingClientRect();
		const style = window.getComputedStyle(el);
		const visible = style.display !== 'none' &&
			style.visibility !== 'hidden' &&
			style.opacity !== '0' &&
			rect.width > 0 &&
			rect.height > 0;

		const attrs = {};
		for (const attr of Array.from(el.attributes)) {
			attrs[attr.name] = attr.value;
		}

		return {
			tag: el.tagName.toLowerCase(),
			text: (el.textContent || '').trim(),
			attrs: attrs,
			visible: visible
		};
	})
`

func parseElements(result interface{}) []ElementInfo {
	elementsData, ok := result.([]interface{})
	if !ok {
		return []ElementInfo{}
	}

	elements := make([]ElementInfo, 0, len(elementsData))
	for _, elemData := range elementsData {
		elemMap, ok := elemData.(map[string]interface{})
		if !ok {
			continue
		}
		elements = append(elements, parseElementInfo(elemMap))
	}
	return elements
}

func parseElementInfo(data map[string]interface{}) ElementInfo {
	elem := ElementInfo{Attrs: map[string]string{}}

	if tag, ok := data["tag"].(string); ok {
		elem.Tag = tag
	}
	if text, ok := data["text"].(string); ok {
		elem.Text = text
	}
	if visible, ok := data["visible"].(bool); ok {
		elem.Visible = visible
	}
	if attrs, ok := data["attrs"].(map[string]interface{}); ok {
		for name, value := range attrs {
			if s, ok := value.(string); ok {
				elem.Attrs[name] = s
			}
		}
	}
	return elem
}
