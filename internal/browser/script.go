package browser

// bindingName is the function the capture script calls to hand an
// event over to the session.
const bindingName = "pomgenEvent"

// captureScript is evaluated in every new document. Listeners run in
// the capture phase so that pages stopping propagation are recorded too.
const captureScript = `
(function() {
	if (window.__pomgenCapture) return;
	window.__pomgenCapture = true;

	function send(ev) {
		if (typeof window.` + bindingName + ` !== 'function') return;
		ev.url = location.href;
		window.` + bindingName + `(JSON.stringify(ev));
	}

	function pathOf(el) {
		var parts = [];
		while (el && el.nodeType === Node.ELEMENT_NODE) {
			var tag = el.nodeName.toLowerCase();
			var idx = 1;
			for (var s = el.previousElementSibling; s; s = s.previousElementSibling) {
				if (s.nodeName.toLowerCase() === tag) idx++;
			}
			parts.unshift(tag + '[' + idx + ']');
			el = el.parentElement;
		}
		return '/' + parts.join('/');
	}

	function snapshot() {
		return document.documentElement ? document.documentElement.outerHTML : '';
	}

	document.addEventListener('click', function(event) {
		if (!event.isTrusted || !(event.target instanceof Element)) return;
		send({type: 'click', path: pathOf(event.target), html: snapshot()});
	}, true);

	function onInput(event) {
		var el = event.target;
		if (!event.isTrusted || !(el instanceof Element)) return;
		var tag = el.nodeName.toLowerCase();
		if (tag !== 'input' && tag !== 'textarea' && tag !== 'select') return;
		if (tag === 'input' && (el.type === 'checkbox' || el.type === 'radio')) return;
		send({type: 'input', path: pathOf(el), value: String(el.value), html: snapshot()});
	}
	document.addEventListener('input', onInput, true);
	document.addEventListener('change', function(event) {
		if (event.target && event.target.nodeName.toLowerCase() === 'select') onInput(event);
	}, true);

	function navigated() { send({type: 'navigate'}); }
	['pushState', 'replaceState'].forEach(function(name) {
		var orig = history[name];
		history[name] = function() {
			var r = orig.apply(this, arguments);
			navigated();
			return r;
		};
	});
	window.addEventListener('popstate', navigated);
	window.addEventListener('hashchange', navigated);

	if (document.readyState === 'loading') {
		document.addEventListener('DOMContentLoaded', function() { send({type: 'load'}); });
	} else {
		send({type: 'load'});
	}
})();
`
